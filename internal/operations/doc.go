// Package operations contains the implementations of the Glacier vault operations.
// Each sub-package handles one family of operations against the service.
package operations
