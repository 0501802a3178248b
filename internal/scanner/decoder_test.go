package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"syscall"
	"testing"
)

func TestClassifyDecoderError(t *testing.T) {
	cases := []struct {
		err  error
		want Reason
	}{
		{ErrPermissionDenied, ReasonPermissionDenied},
		{&fs.PathError{Op: "open", Path: "/dev/hidraw0", Err: fs.ErrPermission}, ReasonPermissionDenied},
		{errors.New("NotAllowedError: Permission denied"), ReasonPermissionDenied},
		{fmt.Errorf("open: %w", ErrNoDevice), ReasonNoDevice},
		{&fs.PathError{Op: "open", Path: "/dev/missing", Err: fs.ErrNotExist}, ReasonNoDevice},
		{errors.New("Requested device not found"), ReasonNoDevice},
		{syscall.EBUSY, ReasonDeviceBusy},
		{errors.New("Could not start video source"), ReasonDeviceBusy},
		{context.DeadlineExceeded, ReasonTimeout},
		{errors.New("boom"), ReasonUnknown},
	}
	for _, tc := range cases {
		got := ClassifyDecoderError(tc.err)
		if got.Reason != tc.want {
			t.Errorf("ClassifyDecoderError(%v) = %s, want %s", tc.err, got.Reason, tc.want)
		}
		if !errors.Is(got, tc.err) {
			t.Errorf("cause %v not wrapped", tc.err)
		}
	}
}

func TestClassifyDecoderError_KeepsExisting(t *testing.T) {
	orig := &DecoderUnavailable{Reason: ReasonTimeout}
	if got := ClassifyDecoderError(fmt.Errorf("start: %w", orig)); got != orig {
		t.Errorf("expected the same error back, got %v", got)
	}
	if ClassifyDecoderError(nil) != nil {
		t.Error("nil should stay nil")
	}
}

func TestHint_DistinctPerReason(t *testing.T) {
	seen := map[string]Reason{}
	for _, r := range []Reason{ReasonPermissionDenied, ReasonNoDevice, ReasonDeviceBusy, ReasonTimeout, ReasonUnknown} {
		h := (&DecoderUnavailable{Reason: r}).Hint()
		if h == "" {
			t.Errorf("empty hint for %s", r)
		}
		if prev, dup := seen[h]; dup {
			t.Errorf("%s and %s share a hint", prev, r)
		}
		seen[h] = r
	}
}
