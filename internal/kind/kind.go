// Package kind defines the error classes surfaced at the command boundary.
// Errors are tagged with ftag so callers can branch on the class without
// matching message text.
package kind

import (
	"github.com/Southclaws/fault/ftag"
)

const (
	// Format marks a malformed sequence file.
	Format ftag.Kind = "format"
	// Config marks a missing or unusable mapping table.
	Config ftag.Kind = "config"
	// State marks a missing song or a corrupted persisted state.
	State ftag.Kind = "state"
	// Availability marks an inventory that cannot realize a selection.
	Availability ftag.Kind = "availability"
	// IO marks file system failures.
	IO ftag.Kind = "io"
)

// Of returns the class an error was tagged with. Untagged errors report
// ftag.Internal, nil reports the empty kind.
func Of(err error) ftag.Kind {
	if err == nil {
		return ""
	}
	return ftag.Get(err)
}
