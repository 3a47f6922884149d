// Package upload handles Glacier archive submission.
//
// Submission is split in two halves. The synchronous half computes the
// SHA-256 tree hash of the archive stream, rewinds it and registers a
// pending upload in the session registry. The asynchronous half transfers
// the archive, either in one UploadArchive request or, above the multipart
// threshold, as concurrently uploaded parts, and reports the result to a
// reconciler that resolves the upload record exactly once.
package upload
