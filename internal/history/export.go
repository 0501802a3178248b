package history

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ExportCSV writes every entry matching f, page by page, as CSV.
func ExportCSV(ctx context.Context, w io.Writer, src Source, f Filter) (int, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "date", "type", "location", "status", "user_code"}); err != nil {
		return 0, fmt.Errorf("history: write csv: %w", err)
	}

	written := 0
	for page := 1; ; page++ {
		res, err := src.Fetch(ctx, f, page, PageSize)
		if err != nil {
			return written, err
		}
		for _, e := range res.Entries {
			row := []string{
				strconv.FormatInt(e.ID, 10),
				e.At.UTC().Format(time.RFC3339),
				string(e.Kind),
				e.Location,
				e.Status,
				e.UserCode,
			}
			if err := cw.Write(row); err != nil {
				return written, fmt.Errorf("history: write csv: %w", err)
			}
			written++
		}
		if len(res.Entries) == 0 || page >= TotalPages(res.Total, PageSize) {
			break
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("history: write csv: %w", err)
	}
	return written, nil
}
