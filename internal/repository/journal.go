package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/evetabi/slot/internal/domain"
	"github.com/jmoiron/sqlx"
)

// Journal receives an audit record for every settled spin. It is write-only:
// balances are never rebuilt from it.
type Journal interface {
	Append(ctx context.Context, rec *domain.SpinRecord) error
}

// NoopJournal discards every record. Used when no database is configured.
type NoopJournal struct{}

// Append implements Journal.
func (NoopJournal) Append(context.Context, *domain.SpinRecord) error { return nil }

// SpinJournal appends spin records to the spin_journal table.
type SpinJournal struct {
	db *sqlx.DB
}

// NewSpinJournal creates a new SpinJournal.
func NewSpinJournal(db *sqlx.DB) *SpinJournal {
	return &SpinJournal{db: db}
}

const insertSpinQuery = `
	INSERT INTO spin_journal
		(id, wallet, bet, payout, multiplier, is_jackpot, winning_lines, reels,
		 balance_before, balance_after, created_at)
	VALUES
		(:id, :wallet, :bet, :payout, :multiplier, :is_jackpot, :winning_lines, :reels,
		 :balance_before, :balance_after, :created_at)`

// Append inserts rec.
func (j *SpinJournal) Append(ctx context.Context, rec *domain.SpinRecord) error {
	if _, err := j.db.NamedExecContext(ctx, insertSpinQuery, rec); err != nil {
		return fmt.Errorf("spin_journal.Append: %w", err)
	}
	return nil
}


// ──────────────────────────────────────────────────────────────────────────────
// JournalWriter: asynchronous front for a Journal
// ──────────────────────────────────────────────────────────────────────────────

var (
	// ErrJournalFull is returned when the write queue has no room; the record
	// is dropped.
	ErrJournalFull = errors.New("spin journal queue full")
	// ErrJournalClosed is returned after Stop.
	ErrJournalClosed = errors.New("spin journal closed")
)

// JournalWriter queues records and writes them to the wrapped Journal from a
// single goroutine, so Append never waits on the database. Start it with
// go w.Run() and shut it down with Stop.
type JournalWriter struct {
	next    Journal
	queue   chan *domain.SpinRecord
	timeout time.Duration
	logger  *slog.Logger

	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewJournalWriter creates a JournalWriter holding up to size pending records.
// Each write to next is bounded by timeout.
func NewJournalWriter(next Journal, size int, timeout time.Duration, logger *slog.Logger) *JournalWriter {
	if size < 1 {
		size = 1
	}
	return &JournalWriter{
		next:    next,
		queue:   make(chan *domain.SpinRecord, size),
		timeout: timeout,
		logger:  logger,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Append queues rec without blocking. The context is not used: the write
// outlives the request that produced it.
func (w *JournalWriter) Append(_ context.Context, rec *domain.SpinRecord) error {
	select {
	case <-w.done:
		return ErrJournalClosed
	default:
	}

	select {
	case w.queue <- rec:
		return nil
	default:
		return ErrJournalFull
	}
}

// Pending returns the number of queued records not yet written.
func (w *JournalWriter) Pending() int {
	return len(w.queue)
}

// Run drains the queue until Stop is called, then writes what is left and
// returns. Must be started in its own goroutine.
func (w *JournalWriter) Run() {
	defer close(w.stopped)
	for {
		select {
		case rec := <-w.queue:
			w.write(rec)
		case <-w.done:
			for {
				select {
				case rec := <-w.queue:
					w.write(rec)
				default:
					return
				}
			}
		}
	}
}

// Stop rejects further records and waits for Run to flush the queue or for
// ctx to end, whichever comes first.
func (w *JournalWriter) Stop(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.done) })
	select {
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("journal_writer.Stop: %d records unwritten: %w", len(w.queue), ctx.Err())
	}
}

func (w *JournalWriter) write(rec *domain.SpinRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.next.Append(ctx, rec); err != nil {
		w.logger.Warn("spin journal: write failed",
			"spin_id", rec.ID, "wallet", rec.Wallet, "err", err)
	}
}
