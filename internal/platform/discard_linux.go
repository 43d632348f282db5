//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// discardPending drops terminal input that has arrived but not been read.
func discardPending(f *os.File) error {
	return unix.IoctlSetInt(int(f.Fd()), unix.TCFLSH, unix.TCIFLUSH)
}
