// Package pool provides memory management optimizations.
// This includes buffer pooling for tree hash blocks and multipart part buffers.
//
// The pool package helps optimize performance for high-throughput operations
// by reusing the large buffers that every archive digest and part upload needs.
package pool
