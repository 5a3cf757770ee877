// Package events owns the tracked-event store.
//
// The store is an ordered, capacity-bounded collection of named events
// persisted as a JSON array. Every mutation saves synchronously and
// atomically, so the on-disk file always reflects the last acknowledged
// change. Names are unique; notified milestone sets only ever grow.
package events
