// Package glacier provides a session client for Amazon S3 Glacier vaults.
//
// The Client submits archives to vaults, computes the SHA-256 tree hash of
// every archive before it is sent, and keeps an in-memory record of every
// upload issued during its lifetime. Uploads run in the background:
// UploadArchive returns as soon as the archive is hashed and registered,
// and the outcome is observed through Uploads, the returned handle, or
// WaitUploads.
//
// Retrievals are asynchronous on the service side. The client initiates
// archive and inventory retrieval jobs, lists and describes them, and fetches
// their output once the service reports them complete. It never polls.
//
// Example:
//
//	client, err := glacier.New(glacier.WithRegion("eu-west-1"))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	f, err := os.Open("backup.tar")
//	if err != nil {
//	    return err
//	}
//	handle, err := client.UploadArchive(ctx, "backups", f, "nightly backup")
//	if err != nil {
//	    return err
//	}
//	if err := client.WaitUploads(ctx); err != nil {
//	    return err
//	}
//	fmt.Println(handle.Status(), handle.ArchiveID())
package glacier
