package object

// action is the range negotiator's verdict on how a read or seek at a target
// offset can be satisfied.
type action int

const (
	// actEOF: at or past the known end of the object. No request.
	actEOF action = iota

	// actServe: the window already buffers the target byte.
	actServe

	// actContinue: the window is drained up to the target, but the open body
	// delivers exactly that byte next. Keep the connection, pull more.
	actContinue

	// actFetch: nothing usable is buffered or in flight. A new ranged
	// request starting at the target is required.
	actFetch
)

// negotiate decides whether the current window/body can satisfy an access at
// target. The open window is reused whenever even a single byte of it is
// servable; only a backward seek, or a seek past the buffered tail of a dead
// body, forces a refetch. size is -1 while the total length is unknown.
func negotiate(target int64, w *window, bodyOpen bool, size int64) action {
	if size >= 0 && target >= size {
		return actEOF
	}
	if w.len() > 0 && target >= w.start && target < w.end() {
		return actServe
	}
	if bodyOpen && target == w.end() {
		return actContinue
	}
	return actFetch
}
