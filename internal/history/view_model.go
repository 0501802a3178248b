package history

import (
	"context"
	"time"
)

// ViewModel holds the paging and filter state of one history screen. It is
// not safe for concurrent use.
type ViewModel struct {
	src Source

	page    int
	total   int
	filter  Filter
	entries []Entry
}

// NewViewModel starts on page 1 with the default filter. Nothing is
// fetched until Load.
func NewViewModel(src Source, now time.Time) *ViewModel {
	return &ViewModel{src: src, page: 1, filter: DefaultFilter(now)}
}

// Load fetches the current page. On error the previous entries are kept.
func (v *ViewModel) Load(ctx context.Context) error {
	res, err := v.src.Fetch(ctx, v.filter, v.page, PageSize)
	if err != nil {
		return err
	}
	v.entries = res.Entries
	v.total = res.Total
	return nil
}

// ApplyFilter replaces the filter, returns to page 1 and reloads.
func (v *ViewModel) ApplyFilter(ctx context.Context, f Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	v.filter = f
	v.page = 1
	return v.Load(ctx)
}

// ResetFilter restores the last seven days, both kinds.
func (v *ViewModel) ResetFilter(ctx context.Context, now time.Time) error {
	return v.ApplyFilter(ctx, DefaultFilter(now))
}

// ChangePage moves by delta and reloads. A move outside [1, TotalPages]
// does nothing and reports false.
func (v *ViewModel) ChangePage(ctx context.Context, delta int) (bool, error) {
	next := v.page + delta
	if delta == 0 || next < 1 || next > v.TotalPages() {
		return false, nil
	}
	prev := v.page
	v.page = next
	if err := v.Load(ctx); err != nil {
		v.page = prev
		return false, err
	}
	return true, nil
}

func (v *ViewModel) CurrentPage() int { return v.page }
func (v *ViewModel) TotalPages() int  { return TotalPages(v.total, PageSize) }
func (v *ViewModel) Total() int       { return v.total }
func (v *ViewModel) Filter() Filter   { return v.filter }

func (v *ViewModel) Entries() []Entry {
	return append([]Entry(nil), v.entries...)
}
