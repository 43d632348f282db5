//go:build !unix

package platform

import (
	"io"
	"time"
)

// newPollSource has no non-blocking fallback off Unix; read deadlines are
// the only bound there.
func newPollSource(io.Reader, time.Time) (io.Reader, func(), bool) {
	return nil, nil, false
}
