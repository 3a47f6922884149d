// Package validation provides centralized input validation logic.
// This includes vault name, archive and job identifier, description,
// part size and byte range validation.
//
// All user inputs are validated before being sent to AWS so that obvious
// mistakes fail fast with a typed error instead of a service round trip.
package validation
