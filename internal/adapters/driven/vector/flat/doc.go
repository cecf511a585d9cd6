// Package flat provides an exact inner-product vector index.
// It implements the driven.VectorIndex and driven.IndexStore interfaces.
//
// Vectors are stored contiguously and searched by brute force, so results
// are exact. The index persists to a single checksummed file that is
// replaced atomically on save.
package flat
