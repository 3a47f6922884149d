// Package inventory parses vault inventory documents produced by inventory
// retrieval jobs. Both output formats of the service are supported: the JSON
// document with a vault header and an archive list, and the CSV listing with
// one archive per row.
package inventory
