// Package logging gives every component a prefixed stdlib logger, so each
// one writes a timestamped, component-tagged line instead of a bare stdout
// write.
package logging

import (
	"log"
	"os"
)

// New returns a *log.Logger prefixed with component, writing to stderr.
func New(component string) *log.Logger {
	return log.New(os.Stderr, "["+component+"] ", log.LstdFlags)
}
