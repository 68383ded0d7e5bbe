package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/yli59577/puyuann/internal/identity/store"
	"github.com/yli59577/puyuann/pkg/clockx"
)

// DefaultSweepInterval is how often the sweeper polls for reclaimable accounts.
const DefaultSweepInterval = 60 * time.Second

// errStillClaimed rolls back a reclaim whose account was verified or
// refreshed after the snapshot was taken.
var errStillClaimed = errors.New("account no longer reclaimable")

// SweepResult summarises one sweep.
type SweepResult struct {
	Reclaimed     int
	Skipped       int
	Failed        int
	TicketsPurged int64
}

// ExpirySweeper periodically deletes unverified accounts whose deadline has
// passed, and optionally purges old verification tickets.
type ExpirySweeper struct {
	Store    store.Store
	Clock    clockx.Clock
	Logger   *slog.Logger
	Interval time.Duration

	// TicketRetention keeps expired tickets this long before purging them.
	// Zero disables the purge.
	TicketRetention time.Duration

	// Internal channels for lifecycle management
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewExpirySweeper creates a sweeper. A non-positive interval means
// DefaultSweepInterval.
func NewExpirySweeper(st store.Store, clock clockx.Clock, logger *slog.Logger, interval, ticketRetention time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpirySweeper{
		Store:           st,
		Clock:           clock,
		Logger:          logger,
		Interval:        interval,
		TicketRetention: ticketRetention,
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}
}

// Start launches the background loop. Call Stop to end it.
func (s *ExpirySweeper) Start() {
	go s.run()
	s.Logger.Info("expiry sweeper started", slog.Duration("interval", s.Interval))
}

// Stop signals the loop and blocks until an in-flight sweep has finished.
func (s *ExpirySweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
	s.Logger.Info("expiry sweeper stopped")
}

func (s *ExpirySweeper) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.Sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-s.stopCh:
			return
		}
	}
}

// Sweep runs one pass. Failures are logged per account and never stop the
// pass.
func (s *ExpirySweeper) Sweep(ctx context.Context) SweepResult {
	var res SweepResult
	now := s.Clock.Now()

	candidates, err := s.Store.Accounts().FindReclaimable(ctx, now)
	if err != nil {
		s.Logger.Error("failed to list reclaimable accounts", slog.Any("error", err))
		return res
	}

	for _, acc := range candidates {
		if ctx.Err() != nil {
			break
		}
		ok, err := s.reclaim(ctx, acc.ID, now)
		switch {
		case err != nil:
			res.Failed++
			s.Logger.Error("failed to reclaim account", slog.String("account_id", acc.ID), slog.Any("error", err))
		case ok:
			res.Reclaimed++
			s.Logger.Debug("reclaimed account", slog.String("account_id", acc.ID))
		default:
			res.Skipped++
		}
	}

	if s.TicketRetention > 0 {
		n, err := s.Store.Tickets().PurgeExpiredBefore(ctx, now.Add(-s.TicketRetention))
		if err != nil {
			s.Logger.Error("failed to purge verification tickets", slog.Any("error", err))
		} else {
			res.TicketsPurged = n
		}
	}

	if res.Reclaimed > 0 || res.Failed > 0 || res.TicketsPurged > 0 {
		s.Logger.Info("expiry sweep completed",
			slog.Int("reclaimed", res.Reclaimed),
			slog.Int("skipped", res.Skipped),
			slog.Int("failed", res.Failed),
			slog.Int64("tickets_purged", res.TicketsPurged),
		)
	}
	return res
}

// reclaim deletes one account and its profile in a single transaction. The
// delete re-checks the reclaimable condition so an account verified since
// the snapshot survives.
func (s *ExpirySweeper) reclaim(ctx context.Context, accountID string, now time.Time) (bool, error) {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Profiles().DeleteFor(ctx, accountID); err != nil {
			return err
		}
		ok, err := tx.Accounts().DeleteIfReclaimable(ctx, accountID, now)
		if err != nil {
			return err
		}
		if !ok {
			return errStillClaimed
		}
		return nil
	})
	if errors.Is(err, errStillClaimed) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
