package recap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"accomplish/internal/api"
	"accomplish/internal/logging"
	"accomplish/internal/sse"
)

// Terminal failure markers for the completion protocol.
var (
	// ErrJobFailed means the server explicitly reported the job as failed.
	ErrJobFailed = errors.New("recap generation failed")
	// ErrProtocol means the channels produced something the protocol does
	// not allow, e.g. a completed job without content or an unknown status.
	ErrProtocol = errors.New("protocol inconsistency")
)

// State identifies the coordinator's position in the completion protocol.
// Transitions are one-directional; in particular Streaming can hand over to
// Polling but never the reverse.
type State int

const (
	StateAwaitingChannel State = iota
	StateStreaming
	StatePolling
	StateReconciling
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAwaitingChannel:
		return "awaiting-channel"
	case StateStreaming:
		return "streaming"
	case StatePolling:
		return "polling"
	case StateReconciling:
		return "reconciling"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Transport is the slice of the API client the coordinator drives.
type Transport interface {
	OpenStream(ctx context.Context, locator string) (io.ReadCloser, error)
	FetchRecapStatus(ctx context.Context, recapID string) (*api.RecapStatus, error)
}

// Indicator advances the user-facing liveness animation. Tick must return
// quickly; the coordinator calls it between logical waits, never
// concurrently.
type Indicator interface {
	Tick()
	Clear()
}

type nopIndicator struct{}

func (nopIndicator) Tick()  {}
func (nopIndicator) Clear() {}

// Options tunes the coordinator timing. Zero values select the production
// cadence; tests shrink them.
type Options struct {
	// OpenTimeout bounds the push-channel open attempt.
	OpenTimeout time.Duration
	// PollInterval is the pull-channel cadence. There is deliberately no
	// overall polling deadline; the run is bounded only by process lifetime.
	PollInterval time.Duration
	// TickInterval is the liveness cadence between logical waits.
	TickInterval time.Duration
	// ReconcileDelay spaces the bounded reconciliation fetches.
	ReconcileDelay time.Duration

	Indicator Indicator
	Logger    *slog.Logger
}

const (
	defaultOpenTimeout    = 5 * time.Second
	defaultPollInterval   = 2 * time.Second
	defaultTickInterval   = 100 * time.Millisecond
	defaultReconcileDelay = 500 * time.Millisecond
)

// Coordinator decides how a single recap job's completion is learned: listen
// on the push channel while it behaves, fall back to polling on any
// irregularity, and reconcile stream-reported completions against possibly
// stale backend metadata before surfacing them. One Coordinator drives one
// job and is not reusable.
type Coordinator struct {
	transport Transport
	job       api.RecapJob
	opts      Options
	indicator Indicator
	logger    *slog.Logger

	state        State
	trace        []State
	stream       *sse.Stream
	streamCancel context.CancelFunc
}

// NewCoordinator builds a coordinator for the given job handle.
func NewCoordinator(transport Transport, job api.RecapJob, opts Options) *Coordinator {
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = defaultOpenTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}
	if opts.ReconcileDelay <= 0 {
		opts.ReconcileDelay = defaultReconcileDelay
	}
	indicator := opts.Indicator
	if indicator == nil {
		indicator = nopIndicator{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{
		transport: transport,
		job:       job,
		opts:      opts,
		indicator: indicator,
		logger:    logger.With(logging.String(logging.FieldComponent, "recap"), logging.String(logging.FieldJobID, job.RecapID)),
	}
}

// State returns the current machine state.
func (c *Coordinator) State() State {
	return c.state
}

// Trace returns the sequence of states entered so far, in order.
func (c *Coordinator) Trace() []State {
	out := make([]State, len(c.trace))
	copy(out, c.trace)
	return out
}

func (c *Coordinator) setState(next State) {
	c.indicator.Clear()
	c.logger.Debug("state transition", logging.String("from", c.state.String()), logging.String("to", next.String()))
	c.state = next
	c.trace = append(c.trace, next)
}

// Run drives the machine to its single terminal outcome. On Done it returns
// the snapshot ready for presentation; on Failed it returns the classified
// error. Cancellation of ctx aborts the run with ctx's error.
func (c *Coordinator) Run(ctx context.Context) (*api.RecapStatus, error) {
	defer c.indicator.Clear()
	defer c.closeStream()

	if c.job.SSEURL != "" {
		c.setState(StateAwaitingChannel)
	} else {
		c.setState(StatePolling)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch c.state {
		case StateAwaitingChannel:
			c.setState(c.awaitChannel(ctx))
		case StateStreaming:
			next, err := c.consumeStream(ctx)
			c.closeStream()
			if err != nil {
				c.setState(StateFailed)
				return nil, err
			}
			c.setState(next)
		case StatePolling:
			snapshot, err := c.poll(ctx)
			if err != nil {
				c.setState(StateFailed)
				return nil, err
			}
			c.setState(StateDone)
			return snapshot, nil
		case StateReconciling:
			snapshot, err := c.reconcile(ctx)
			if err != nil {
				c.setState(StateFailed)
				return nil, err
			}
			c.setState(StateDone)
			return snapshot, nil
		default:
			return nil, fmt.Errorf("%w: coordinator resumed from terminal state %s", ErrProtocol, c.state)
		}
	}
}

// awaitChannel attempts the push-channel open, bounding only the open
// itself. The request context must outlive the open: cancelling it would
// tear down the response body and kill a healthy stream. Every failure mode
// lands in Polling; a "channel gone" answer (the job finished before the
// channel was reachable) skips the timeout wait because the server already
// answered.
func (c *Coordinator) awaitChannel(ctx context.Context) State {
	streamCtx, cancel := context.WithCancel(ctx)

	type opened struct {
		body io.ReadCloser
		err  error
	}
	result := make(chan opened, 1)
	go func() {
		body, err := c.transport.OpenStream(streamCtx, c.job.SSEURL)
		result <- opened{body: body, err: err}
	}()
	// abandon cancels the in-flight open and disposes of a body that may
	// still arrive after the coordinator has moved on.
	abandon := func() {
		cancel()
		go func() {
			if r := <-result; r.body != nil {
				r.body.Close()
			}
		}()
	}

	deadline := time.NewTimer(c.opts.OpenTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(c.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			abandon()
			return StatePolling
		case <-ticker.C:
			c.indicator.Tick()
		case <-deadline.C:
			c.logger.Debug("push channel open timed out, polling")
			abandon()
			return StatePolling
		case r := <-result:
			if r.err != nil {
				cancel()
				if errors.Is(r.err, api.ErrNotFound) {
					c.logger.Debug("push channel already gone, polling", logging.Error(r.err))
				} else {
					c.logger.Debug("push channel unavailable, polling", logging.Error(r.err))
				}
				return StatePolling
			}
			c.stream = sse.New(r.body)
			c.streamCancel = cancel
			return StateStreaming
		}
	}
}

// consumeStream reads push events until a terminal signal or an
// irregularity. Frame decode errors are skipped; everything else that is not
// a clean terminal event hands over to Polling rather than failing, since
// the job may still complete.
func (c *Coordinator) consumeStream(ctx context.Context) (State, error) {
	ticker := time.NewTicker(c.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return StateFailed, ctx.Err()
		case <-ticker.C:
			c.indicator.Tick()
		case result, ok := <-c.stream.Events():
			if !ok {
				c.logger.Debug("push channel ended without terminal status, polling")
				return StatePolling, nil
			}
			if result.Err != nil {
				if errors.Is(result.Err, api.ErrDecode) {
					c.logger.Debug("skipping malformed frame", logging.Error(result.Err))
					continue
				}
				c.logger.Debug("push channel error, polling", logging.Error(result.Err))
				return StatePolling, nil
			}
			switch result.Event.Status {
			case api.RecapStatusProcessing:
				continue
			case api.RecapStatusCompleted:
				return StateReconciling, nil
			case api.RecapStatusFailed:
				return StateFailed, ErrJobFailed
			default:
				return StateFailed, fmt.Errorf("%w: unexpected recap status %q", ErrProtocol, result.Event.Status)
			}
		}
	}
}

// poll drives the authoritative pull channel at a fixed cadence until a
// terminal snapshot. Completions seen here carry fresh metadata already, so
// no reconciliation follows.
func (c *Coordinator) poll(ctx context.Context) (*api.RecapStatus, error) {
	poll := time.NewTicker(c.opts.PollInterval)
	defer poll.Stop()
	ticker := time.NewTicker(c.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			c.indicator.Tick()
		case <-poll.C:
			snapshot, err := c.transport.FetchRecapStatus(ctx, c.job.RecapID)
			if err != nil {
				return nil, err
			}
			switch snapshot.Status {
			case api.RecapStatusProcessing:
				continue
			case api.RecapStatusCompleted:
				if snapshot.Content == nil {
					return nil, fmt.Errorf("%w: recap completed but no content was returned", ErrProtocol)
				}
				return snapshot, nil
			case api.RecapStatusFailed:
				return nil, ErrJobFailed
			default:
				return nil, fmt.Errorf("%w: unexpected recap status %q", ErrProtocol, snapshot.Status)
			}
		}
	}
}

func (c *Coordinator) closeStream() {
	if c.stream != nil {
		_ = c.stream.Close()
		c.stream = nil
	}
	if c.streamCancel != nil {
		c.streamCancel()
		c.streamCancel = nil
	}
}

// FetchCompleted retrieves content for a job that completed before the
// submission call returned (a cache hit). One direct fetch, no streaming, no
// polling.
func FetchCompleted(ctx context.Context, transport Transport, recapID string) (*api.RecapStatus, error) {
	snapshot, err := transport.FetchRecapStatus(ctx, recapID)
	if err != nil {
		return nil, err
	}
	if snapshot.Content == nil {
		return nil, fmt.Errorf("%w: recap completed but no content was returned", ErrProtocol)
	}
	return snapshot, nil
}
