//go:build !unix

package platform

import "os"

// discardPending is a no-op off Unix.
func discardPending(*os.File) error {
	return nil
}
