//go:build unix

package platform

import (
	"errors"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

const replyPollInterval = 5 * time.Millisecond

// pollReader reads a descriptor switched to non-blocking mode, retrying on
// EAGAIN until the deadline passes.
type pollReader struct {
	f        *os.File
	deadline time.Time
}

func (p *pollReader) Read(b []byte) (int, error) {
	for {
		n, err := p.f.Read(b)
		if n > 0 {
			return n, nil
		}

		if err != nil && !errors.Is(err, unix.EAGAIN) && !errors.Is(err, unix.EWOULDBLOCK) {
			return 0, err
		}

		if !time.Now().Before(p.deadline) {
			return 0, os.ErrDeadlineExceeded
		}

		time.Sleep(replyPollInterval)
	}
}

// newPollSource switches a file's descriptor to non-blocking mode for the
// duration of one report read. Descriptors registered with the runtime
// poller additionally get a read deadline, since their reads park on the
// poller instead of returning EAGAIN.
func newPollSource(r io.Reader, deadline time.Time) (io.Reader, func(), bool) {
	f, ok := r.(*os.File)
	if !ok {
		return nil, nil, false
	}

	fd := int(f.Fd())

	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return nil, nil, false
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, nil, false
	}

	hasDeadline := f.SetReadDeadline(deadline) == nil

	done := func() {
		if hasDeadline {
			_ = f.SetReadDeadline(time.Time{})
		}

		_ = unix.SetNonblock(fd, flags&unix.O_NONBLOCK != 0)
	}

	return &pollReader{f: f, deadline: deadline}, done, true
}
