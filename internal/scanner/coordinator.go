package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
	"github.com/BrandonDHaskell/campusgate/internal/gateway"
)

// DefaultPermissionTimeout bounds the decoder's permission check.
const DefaultPermissionTimeout = 10 * time.Second

// ErrBusy is returned by Start while a detection is still being processed.
var ErrBusy = errors.New("scanner: detection in progress")

// Gateway is the subset of the API client the coordinator needs. Errors
// of kind gateway.KindNotFound mean the code belongs to nobody.
type Gateway interface {
	GetUserByCode(ctx context.Context, code string) (types.User, error)
	RecordAccess(ctx context.Context, code string, kind types.EventKind) (types.RecordAccessResponse, error)
}

type Progress int

const (
	ProgressDetected Progress = iota
	ProgressResolving
	ProgressSubmitting
)

func (p Progress) String() string {
	switch p {
	case ProgressDetected:
		return "detected"
	case ProgressResolving:
		return "resolving"
	case ProgressSubmitting:
		return "submitting"
	}
	return "unknown"
}

type Status int

const (
	StatusRecorded Status = iota
	StatusUnknownCode
	StatusLookupFailed
	StatusRecordFailed
	StatusValidationFailed
	StatusDecoderFailed
)

func (s Status) String() string {
	switch s {
	case StatusRecorded:
		return "recorded"
	case StatusUnknownCode:
		return "unknown_code"
	case StatusLookupFailed:
		return "lookup_failed"
	case StatusRecordFailed:
		return "record_failed"
	case StatusValidationFailed:
		return "validation_failed"
	case StatusDecoderFailed:
		return "decoder_failed"
	}
	return "unknown"
}

// Outcome is the final result of one accepted detection, or of a decoder
// failure.
type Outcome struct {
	Status  Status
	Code    string
	Kind    types.EventKind
	User    *types.User
	Message string
	Err     error
}

func (o Outcome) OK() bool { return o.Status == StatusRecorded }

type Config struct {
	Decoder Decoder
	Gateway Gateway
	// Kind is the initial event kind; see SetKind.
	Kind              types.EventKind
	Window            time.Duration
	PermissionTimeout time.Duration
	Logger            zerolog.Logger

	OnProgress func(p Progress, code string)
	OnOutcome  func(o Outcome)
}

type Coordinator struct {
	decoder           Decoder
	gw                Gateway
	window            time.Duration
	permissionTimeout time.Duration
	logger            zerolog.Logger
	onProgress        func(Progress, string)
	onOutcome         func(Outcome)

	// startMu serializes Start and Stop.
	startMu sync.Mutex

	mu   sync.Mutex
	sess Session
	kind types.EventKind
	ctx  context.Context

	wg sync.WaitGroup
}

func NewCoordinator(cfg Config) *Coordinator {
	c := &Coordinator{
		decoder:           cfg.Decoder,
		gw:                cfg.Gateway,
		window:            cfg.Window,
		permissionTimeout: cfg.PermissionTimeout,
		onProgress:        cfg.OnProgress,
		onOutcome:         cfg.OnOutcome,
		kind:              cfg.Kind,
		ctx:               context.Background(),
	}
	if c.window <= 0 {
		c.window = DefaultWindow
	}
	if c.permissionTimeout <= 0 {
		c.permissionTimeout = DefaultPermissionTimeout
	}
	c.logger = cfg.Logger.With().
		Str("component", "scanner").
		Str("scan_session", uuid.NewString()).
		Logger()
	return c
}

// SetKind selects entry or exit for detections accepted from now on.
func (c *Coordinator) SetKind(k types.EventKind) {
	c.mu.Lock()
	c.kind = k
	c.mu.Unlock()
}

// Session returns a snapshot of the state machine.
func (c *Coordinator) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// Start checks decoder permission and arms it. ctx also scopes the
// network calls made for detections accepted under this arming.
func (c *Coordinator) Start(ctx context.Context) error {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	c.mu.Lock()
	switch {
	case c.sess.State.InFlight():
		c.mu.Unlock()
		return ErrBusy
	case c.sess.State == Armed:
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if pc, ok := c.decoder.(PermissionChecker); ok {
		if err := c.checkPermission(ctx, pc); err != nil {
			return err
		}
	}

	c.mu.Lock()
	if c.sess.State != Idle {
		c.mu.Unlock()
		return ErrBusy
	}
	c.sess = c.sess.Arm()
	c.ctx = ctx
	c.mu.Unlock()

	if err := c.decoder.Start(c.detect, c.decoderFailed); err != nil {
		c.mu.Lock()
		c.sess = c.sess.Disarm()
		c.mu.Unlock()
		du := ClassifyDecoderError(err)
		c.logger.Warn().Err(err).Str("reason", string(du.Reason)).Msg("decoder start failed")
		return du
	}

	c.logger.Debug().Msg("armed")
	return nil
}

// Stop disarms the decoder. A detection already being processed still
// completes and reports its outcome.
func (c *Coordinator) Stop() {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	c.mu.Lock()
	wasArmed := c.sess.State == Armed
	c.sess = c.sess.Disarm()
	c.mu.Unlock()

	if wasArmed {
		c.decoder.Stop()
		c.logger.Debug().Msg("disarmed")
	}
}

// Wait blocks until every accepted detection has reported its outcome.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// OnDetection feeds one raw decode into the coordinator.
func (c *Coordinator) OnDetection(raw string, at time.Time) Decision {
	code := strings.TrimSpace(raw)

	c.mu.Lock()
	next, d := c.sess.Detect(code, at, c.window)
	c.sess = next
	kind, ctx := c.kind, c.ctx
	if d == Accepted {
		c.wg.Add(1)
	}
	c.mu.Unlock()

	if d != Accepted {
		c.logger.Debug().Str("code", code).Stringer("decision", d).Msg("detection ignored")
		return d
	}

	c.decoder.Stop()
	c.logger.Info().Str("code", code).Str("event_type", string(kind)).Msg("detection accepted")
	c.progress(ProgressDetected, code)

	go c.process(ctx, code, kind)
	return d
}

func (c *Coordinator) detect(code string, at time.Time) {
	c.OnDetection(code, at)
}

func (c *Coordinator) process(ctx context.Context, code string, kind types.EventKind) {
	defer c.wg.Done()

	out := c.resolveAndSubmit(ctx, code, kind)

	c.mu.Lock()
	c.sess = c.sess.Finish()
	c.mu.Unlock()

	ev := c.logger.Info()
	if !out.OK() {
		ev = c.logger.Warn().Err(out.Err)
	}
	ev.Str("code", code).Stringer("status", out.Status).Msg(out.Message)

	if c.onOutcome != nil {
		c.onOutcome(out)
	}
}

func (c *Coordinator) resolveAndSubmit(ctx context.Context, code string, kind types.EventKind) Outcome {
	out := Outcome{Code: code, Kind: kind}

	if !kind.Valid() {
		c.resolved(false)
		out.Status = StatusValidationFailed
		out.Message = "Select entry or exit before scanning."
		return out
	}

	c.progress(ProgressResolving, code)
	user, err := c.gw.GetUserByCode(ctx, code)
	if err != nil {
		c.resolved(false)
		out.Err = err
		if gateway.IsKind(err, gateway.KindNotFound) {
			out.Status = StatusUnknownCode
			out.Message = fmt.Sprintf("Unknown code %s.", code)
		} else {
			out.Status = StatusLookupFailed
			out.Message = fmt.Sprintf("Could not verify user: %s", err.Error())
		}
		return out
	}
	c.resolved(true)
	out.User = &user

	c.progress(ProgressSubmitting, code)
	resp, err := c.gw.RecordAccess(ctx, code, kind)
	switch {
	case err != nil:
		out.Status = StatusRecordFailed
		out.Message = err.Error()
		out.Err = err
	case !resp.Success:
		out.Status = StatusRecordFailed
		out.Message = resp.Reason()
		if out.Message == "" {
			out.Message = "Unknown error recording access."
		}
	default:
		out.Status = StatusRecorded
		out.Message = fmt.Sprintf("%s recorded for %s.", kindLabel(kind), user.Name)
	}
	return out
}

// decoderFailed handles an asynchronous decoder error: the session is
// disarmed and the failure reported as an outcome.
func (c *Coordinator) decoderFailed(err error) {
	du := ClassifyDecoderError(err)

	c.mu.Lock()
	c.sess = c.sess.Disarm()
	c.mu.Unlock()

	c.logger.Error().Err(err).Str("reason", string(du.Reason)).Msg("decoder failed")
	if c.onOutcome != nil {
		c.onOutcome(Outcome{Status: StatusDecoderFailed, Message: du.Hint(), Err: du})
	}
}

func (c *Coordinator) checkPermission(ctx context.Context, pc PermissionChecker) error {
	ctx, cancel := context.WithTimeout(ctx, c.permissionTimeout)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- pc.CheckPermission(ctx) }()

	var err error
	select {
	case err = <-errc:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err == nil {
		return nil
	}

	du := ClassifyDecoderError(err)
	c.logger.Warn().Err(err).Str("reason", string(du.Reason)).Msg("decoder permission check failed")
	return du
}

func (c *Coordinator) resolved(found bool) {
	c.mu.Lock()
	c.sess = c.sess.Resolved(found)
	c.mu.Unlock()
}

func (c *Coordinator) progress(p Progress, code string) {
	if c.onProgress != nil {
		c.onProgress(p, code)
	}
}

func kindLabel(k types.EventKind) string {
	switch k {
	case types.KindEntry:
		return "Entry"
	case types.KindExit:
		return "Exit"
	}
	return string(k)
}
