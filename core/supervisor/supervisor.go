package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/m3rciful/confbot/core/logger"
	"github.com/m3rciful/confbot/core/telegram/netutil"
)

// Phase describes what the supervised run loop is currently doing.
type Phase string

const (
	PhaseStarting Phase = "starting"
	PhaseRunning  Phase = "running"
	PhaseBackoff  Phase = "backoff"
	PhaseStopped  Phase = "stopped"
)

const (
	defaultNetworkBackoff = 10 * time.Second
	defaultGenericBackoff = 30 * time.Second
)

// Options configures a Supervisor.
type Options struct {
	// Name identifies the supervised unit in logs.
	Name string
	// Run executes one session. It should block until the session ends
	// and return nil on a clean, context-driven shutdown.
	Run func(ctx context.Context) error

	// NetworkBackoff delays restarts after connectivity failures.
	NetworkBackoff time.Duration
	// GenericBackoff delays restarts after any other failure, including
	// recovered panics.
	GenericBackoff time.Duration

	// OnPhase is invoked on every phase change.
	OnPhase func(Phase)
}

// Supervisor restarts a failing run function until its context is cancelled.
// It never gives up: transient network failures come back faster than
// unexpected ones, and panics inside Run are converted into restarts.
type Supervisor struct {
	opts     Options
	phase    Phase
	attempts int
}

// New builds a Supervisor, applying default backoff intervals where unset.
func New(opts Options) *Supervisor {
	if opts.NetworkBackoff <= 0 {
		opts.NetworkBackoff = defaultNetworkBackoff
	}
	if opts.GenericBackoff <= 0 {
		opts.GenericBackoff = defaultGenericBackoff
	}
	if opts.Name == "" {
		opts.Name = "main"
	}
	return &Supervisor{opts: opts, phase: PhaseStopped}
}

// Phase returns the phase recorded by the last transition. It is meant for
// introspection from the owning goroutine, not for cross-goroutine sync.
func (s *Supervisor) Phase() Phase {
	return s.phase
}

// Run drives restart cycles until ctx is cancelled. It returns nil; every
// failure is absorbed into a backoff and retried.
func (s *Supervisor) Run(ctx context.Context) error {
	if s.opts.Run == nil {
		return fmt.Errorf("supervisor: nil run function")
	}

	for {
		if ctx.Err() != nil {
			s.setPhase(PhaseStopped)
			logger.Info(ctx, "supervisor", "stopped",
				slog.String("status", "ok"),
				slog.String("phase", string(PhaseStopped)),
			)
			return nil
		}

		s.attempts++
		s.setPhase(PhaseStarting)
		logger.Info(ctx, "supervisor", "session.start",
			slog.String("status", "ok"),
			slog.String("phase", string(PhaseStarting)),
			slog.Int("attempts", s.attempts),
		)

		s.setPhase(PhaseRunning)
		err := s.runOnce(ctx)

		if ctx.Err() != nil {
			s.setPhase(PhaseStopped)
			logger.Info(ctx, "supervisor", "stopped",
				slog.String("status", "ok"),
				slog.String("phase", string(PhaseStopped)),
				slog.Int("attempts", s.attempts),
			)
			return nil
		}

		backoff := s.opts.GenericBackoff
		errCode := ""
		if err != nil {
			errCode = netutil.Classify(err)
			if netutil.IsNetwork(err) {
				backoff = s.opts.NetworkBackoff
			}
		}

		s.setPhase(PhaseBackoff)
		attrs := []slog.Attr{
			slog.String("status", "fail"),
			slog.String("phase", string(PhaseBackoff)),
			slog.Int("attempts", s.attempts),
			slog.Int64("backoff_ms", backoff.Milliseconds()),
		}
		if err != nil {
			attrs = append(attrs,
				slog.String("err", netutil.SanitizeError(err)),
				slog.String("err_code", errCode),
			)
		}
		logger.Warn(ctx, "supervisor", "session.restart", attrs...)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.setPhase(PhaseStopped)
			logger.Info(ctx, "supervisor", "stopped",
				slog.String("status", "ok"),
				slog.String("phase", string(PhaseStopped)),
				slog.Int("attempts", s.attempts),
			)
			return nil
		case <-timer.C:
		}
	}
}

// runOnce executes one session, converting panics into errors so the loop
// keeps running.
func (s *Supervisor) runOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("supervisor: panic in %s: %v", s.opts.Name, r)
			logger.Error(ctx, "supervisor", "session.panic",
				slog.String("status", "fail"),
				slog.Any("err", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	return s.opts.Run(ctx)
}

func (s *Supervisor) setPhase(p Phase) {
	s.phase = p
	if s.opts.OnPhase != nil {
		s.opts.OnPhase(p)
	}
}
