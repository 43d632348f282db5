//go:build !windows

package platform

import "os"

// Default returns the ANSI backend over the process's standard streams.
func Default(opts ...Option) Backend {
	return NewANSI(os.Stdin, os.Stdout, opts...)
}
