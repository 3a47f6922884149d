// Package treehash computes the SHA-256 tree hash that Amazon S3 Glacier uses
// to authenticate archive content.
//
// The archive is split into 1 MiB blocks and each block is hashed on its own.
// The block hashes are then combined pairwise, left to right, one level at a
// time. A hash left without a partner at the end of a level moves up to the
// next level unchanged. The single remaining hash is the tree hash.
//
// Example usage:
//
//	f, err := os.Open("backup.tar")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	digest, err := treehash.Compute(f)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(digest) // lowercase hex, as sent in the x-amz-sha256-tree-hash header
package treehash
