//go:build unix && !linux

package platform

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// maxDiscardReads bounds the drain when input keeps arriving.
const maxDiscardReads = 64

// discardPending drops terminal input that has arrived but not been read.
// The descriptor is read directly in non-blocking mode so that the runtime
// poller never parks the drain.
func discardPending(f *os.File) error {
	fd := int(f.Fd())

	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return err
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		return err
	}
	defer func() { _ = unix.SetNonblock(fd, flags&unix.O_NONBLOCK != 0) }()

	buf := make([]byte, 256)

	for range maxDiscardReads {
		n, err := unix.Read(fd, buf)
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || n == 0 {
			return nil
		}

		if err != nil {
			return err
		}
	}

	return nil
}
