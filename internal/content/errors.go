package content

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLibrary is wrapped by every LoadError.
var ErrInvalidLibrary = errors.New("invalid content library")

// Issue is one problem found while validating a library.
type Issue struct {
	Index   int    // position of the row in the source, -1 for document-level problems
	RowID   string // may be empty
	Problem string
}

func (i Issue) String() string {
	switch {
	case i.Index < 0:
		return i.Problem
	case i.RowID == "":
		return fmt.Sprintf("row %d: %s", i.Index, i.Problem)
	default:
		return fmt.Sprintf("row %d (%s): %s", i.Index, i.RowID, i.Problem)
	}
}

// LoadError reports every problem that prevented a library from loading.
type LoadError struct {
	Source string
	Issues []Issue
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString(ErrInvalidLibrary.Error())
	if e.Source != "" {
		fmt.Fprintf(&b, " %s", e.Source)
	}
	fmt.Fprintf(&b, ": %d issue(s)", len(e.Issues))
	for _, issue := range e.Issues {
		b.WriteString("; ")
		b.WriteString(issue.String())
	}
	return b.String()
}

// Unwrap lets callers test with errors.Is(err, ErrInvalidLibrary).
func (e *LoadError) Unwrap() error {
	return ErrInvalidLibrary
}
