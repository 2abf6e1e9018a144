//go:build asyncstackdebug

package asyncstack

import "sync"

// leafStore mirrors sentinel marking: every mutation writes the mark first
// and then the set, so a concurrent sweep may briefly observe one without
// the other. One readers/writer lock guards the set for its whole lifetime;
// it is held only for a single insert, erase or iteration and never across
// a suspension point.
var leafStore = struct {
	mu     sync.RWMutex
	frames map[*Frame]struct{}
}{frames: make(map[*Frame]struct{})}

func leafStoreInsert(frame *Frame) {
	leafStore.mu.Lock()
	leafStore.frames[frame] = struct{}{}
	leafStore.mu.Unlock()
}

func leafStoreRemove(frame *Frame) {
	leafStore.mu.Lock()
	delete(leafStore.frames, frame)
	leafStore.mu.Unlock()
}

func leafStoreSweep(fn func(*Frame)) {
	leafStore.mu.RLock()
	defer leafStore.mu.RUnlock()
	for frame := range leafStore.frames {
		fn(frame)
	}
}
