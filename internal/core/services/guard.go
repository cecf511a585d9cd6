package services

import "sync"

// IndexGuard coordinates index builds with queries.
//
// Queries hold the read side while they search the index and join metadata.
// A build holds the write side only while it publishes the index and
// activates the matching metadata, so a query never observes one without
// the other. Builds are serialised by a separate mutex.
type IndexGuard struct {
	rw    sync.RWMutex
	build sync.Mutex
}

// NewIndexGuard returns a guard shared by the indexing and query services.
func NewIndexGuard() *IndexGuard {
	return &IndexGuard{}
}
