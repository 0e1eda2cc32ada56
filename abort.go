package csvstream

import "sync/atomic"

// AbortHandle is passed to Step and Chunk callbacks so they can stop a
// parse early without either callback holding a reference to the
// Streamer itself.
type AbortHandle struct {
	flag atomic.Bool
}

// Abort requests that the parse stop at the next row boundary. Safe to
// call more than once or from a callback that no longer owns the
// Streamer.
func (a *AbortHandle) Abort() { a.flag.Store(true) }

// Aborted reports whether Abort has been called.
func (a *AbortHandle) Aborted() bool { return a.flag.Load() }
