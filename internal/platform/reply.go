package platform

import (
	"io"
	"time"
)

// deadliner is implemented by *os.File, net.Conn and similar streams.
type deadliner interface {
	SetReadDeadline(t time.Time) error
}

// newReplySource wraps r so that reads give up with os.ErrDeadlineExceeded
// once timeout has elapsed. The returned func undoes any change made to r.
//
// Readers that offer neither a file descriptor nor read deadlines are
// returned as is and block until they produce data.
func newReplySource(r io.Reader, timeout time.Duration) (io.Reader, func()) {
	if timeout <= 0 {
		return r, func() {}
	}

	deadline := time.Now().Add(timeout)

	if src, done, ok := newPollSource(r, deadline); ok {
		return src, done
	}

	if d, ok := r.(deadliner); ok {
		if err := d.SetReadDeadline(deadline); err == nil {
			return r, func() {
				_ = d.SetReadDeadline(time.Time{})
			}
		}
	}

	return r, func() {}
}
