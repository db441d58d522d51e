package object

import "io"

// defaultHighWater bounds how many un-consumed bytes a stream will hold. Once
// the window is full, no more is pulled off the body until the caller drains
// some, so a slow consumer throttles the connection instead of growing the
// buffer.
const defaultHighWater = 256 * 1024

// window holds bytes pulled off the current body which the caller has not
// consumed yet. It covers the half-open range [start, end); start is always
// the stream's current position, because take discards as it serves.
type window struct {
	buf   []byte
	start int64
	max   int
}

func newWindow(max int) window {
	if max <= 0 {
		max = defaultHighWater
	}
	return window{max: max}
}

func (w *window) len() int {
	return len(w.buf)
}

func (w *window) end() int64 {
	return w.start + int64(len(w.buf))
}

func (w *window) free() int {
	return w.max - len(w.buf)
}

// fill pulls at most free() bytes from r onto the tail of the window. It
// performs a single Read, so a short read is not an error.
func (w *window) fill(r io.Reader) (int, error) {
	free := w.free()
	if free <= 0 {
		return 0, nil
	}
	off := len(w.buf)
	if cap(w.buf) < w.max {
		grown := make([]byte, off, w.max)
		copy(grown, w.buf)
		w.buf = grown
	}
	n, err := r.Read(w.buf[off : off+free])
	w.buf = w.buf[:off+n]
	return n, err
}

// take copies up to len(p) bytes from the head of the window into p and
// discards them, advancing start. Bytes handed out this way are never
// re-served.
func (w *window) take(p []byte) int {
	n := copy(p, w.buf)
	if n > 0 {
		w.buf = w.buf[:copy(w.buf, w.buf[n:])]
		w.start += int64(n)
	}
	return n
}

// skip discards n buffered bytes from the head without serving them. n must
// not exceed len().
func (w *window) skip(n int64) {
	if n == 0 {
		return
	}
	w.buf = w.buf[:copy(w.buf, w.buf[n:])]
	w.start += n
}

// discardTo drops everything and re-anchors the window at off. Called
// whenever a refetch supersedes the buffered range.
func (w *window) discardTo(off int64) {
	w.buf = w.buf[:0]
	w.start = off
}
