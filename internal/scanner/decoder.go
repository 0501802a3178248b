package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"
	"time"
)

// Decoder is the barcode source. Start begins delivering detections to
// onDetect and asynchronous failures to onError; Stop ends delivery. Stop
// may be called from inside onDetect and must not wait for it to return.
// A Decoder must accept Start again after Stop.
type Decoder interface {
	Start(onDetect func(code string, at time.Time), onError func(error)) error
	Stop()
}

// PermissionChecker is implemented by decoders that need device access
// granted before Start.
type PermissionChecker interface {
	CheckPermission(ctx context.Context) error
}

var (
	ErrPermissionDenied = errors.New("scanner: permission denied")
	ErrNoDevice         = errors.New("scanner: no device")
	ErrDeviceBusy       = errors.New("scanner: device busy")
)

type Reason string

const (
	ReasonPermissionDenied Reason = "permission_denied"
	ReasonNoDevice         Reason = "no_device"
	ReasonDeviceBusy       Reason = "device_busy"
	ReasonTimeout          Reason = "timeout"
	ReasonUnknown          Reason = "unknown"
)

// DecoderUnavailable means the decoder could not be armed or stopped
// working.
type DecoderUnavailable struct {
	Reason Reason
	Err    error
}

func (e *DecoderUnavailable) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decoder unavailable: %s", e.Reason)
	}
	return fmt.Sprintf("decoder unavailable: %s: %v", e.Reason, e.Err)
}

func (e *DecoderUnavailable) Unwrap() error { return e.Err }

// Hint is a remediation message for the operator.
func (e *DecoderUnavailable) Hint() string {
	switch e.Reason {
	case ReasonPermissionDenied:
		return "Access to the scanner was denied. Check the device permissions."
	case ReasonNoDevice:
		return "No scanner was found. Make sure it is connected."
	case ReasonDeviceBusy:
		return "The scanner is busy or could not be started. Close other programs using it."
	case ReasonTimeout:
		return "The scanner did not respond in time. Try again."
	}
	return "The scanner could not be started."
}

// ClassifyDecoderError wraps err in a *DecoderUnavailable, picking the
// reason from known sentinels, OS errors or the message text.
func ClassifyDecoderError(err error) *DecoderUnavailable {
	if err == nil {
		return nil
	}
	var du *DecoderUnavailable
	if errors.As(err, &du) {
		return du
	}
	return &DecoderUnavailable{Reason: reasonFor(err), Err: err}
}

func reasonFor(err error) Reason {
	switch {
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, fs.ErrPermission):
		return ReasonPermissionDenied
	case errors.Is(err, ErrNoDevice), errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENODEV):
		return ReasonNoDevice
	case errors.Is(err, ErrDeviceBusy), errors.Is(err, syscall.EBUSY):
		return ReasonDeviceBusy
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission denied"), strings.Contains(msg, "notallowed"):
		return ReasonPermissionDenied
	case strings.Contains(msg, "device not found"), strings.Contains(msg, "no such device"):
		return ReasonNoDevice
	case strings.Contains(msg, "could not start video source"), strings.Contains(msg, "busy"):
		return ReasonDeviceBusy
	}
	return ReasonUnknown
}
