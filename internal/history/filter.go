// Package history pages and filters a member's access log for display.
package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
)

// PageSize is fixed; the view model always shows ten entries per page.
const PageSize = 10

var ErrInvalidFilter = errors.New("history: invalid filter")

// Entry is one row of the history list.
type Entry struct {
	ID       int64
	At       time.Time
	Kind     types.EventKind
	Location string
	// Status is "success" or "error".
	Status   string
	UserCode string
}

// Filter bounds are inclusive UTC calendar days (YYYY-MM-DD); empty means
// unbounded. Kind is "all", "entry" or "exit"; empty means "all".
type Filter struct {
	Start string
	End   string
	Kind  string
}

// DefaultFilter covers the last seven days, both kinds.
func DefaultFilter(now time.Time) Filter {
	now = now.UTC()
	return Filter{
		Start: now.AddDate(0, 0, -7).Format(types.DateLayout),
		End:   now.Format(types.DateLayout),
		Kind:  types.TypeAll,
	}
}

func (f Filter) Validate() error {
	for _, d := range []string{f.Start, f.End} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(types.DateLayout, d); err != nil {
			return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidFilter, d)
		}
	}
	if f.Start != "" && f.End != "" && f.Start > f.End {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidFilter, f.Start, f.End)
	}
	switch f.Kind {
	case "", types.TypeAll, string(types.KindEntry), string(types.KindExit):
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidFilter, f.Kind)
	}
	return nil
}

func (f Filter) Matches(e Entry) bool {
	day := e.At.UTC().Format(types.DateLayout)
	if f.Start != "" && day < f.Start {
		return false
	}
	if f.End != "" && day > f.End {
		return false
	}
	return f.Kind == "" || f.Kind == types.TypeAll || f.Kind == string(e.Kind)
}

// TotalPages is ceil(total/size), never less than one.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}
