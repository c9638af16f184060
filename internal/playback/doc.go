// Package playback holds the playback control state for a single video session and reconciles it with the
// asynchronous events reported by an external video engine.
//
// All mutation goes through Machine.Apply, which is driven by exactly one goroutine per session (Session.Run).
// Engine callbacks, user intents and internal completions share that one event queue, so handlers never interleave.
// Apply returns the engine Commands a transition requires and the Session executes them.
package playback
