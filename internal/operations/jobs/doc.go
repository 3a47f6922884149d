// Package jobs handles Glacier vault job operations.
// This includes initiating archive and inventory retrieval jobs, listing and
// describing jobs, and fetching the output of completed jobs.
//
// Jobs are asynchronous on the service side. Nothing in this package polls:
// callers decide when to list or describe jobs again.
package jobs
