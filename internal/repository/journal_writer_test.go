package repository_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/evetabi/slot/internal/domain"
	"github.com/evetabi/slot/internal/repository"
	"github.com/google/uuid"
)

// memJournal keeps appended records and the error each write saw.
type memJournal struct {
	mu   sync.Mutex
	recs []*domain.SpinRecord
	errs []error
	wait bool // block until ctx ends
}

func (j *memJournal) Append(ctx context.Context, rec *domain.SpinRecord) error {
	var err error
	if j.wait {
		<-ctx.Done()
		err = ctx.Err()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.recs = append(j.recs, rec)
	j.errs = append(j.errs, err)
	return err
}

func (j *memJournal) snapshot() ([]*domain.SpinRecord, []error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]*domain.SpinRecord(nil), j.recs...), append([]error(nil), j.errs...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJournalWriter_FlushesOnStop(t *testing.T) {
	mem := &memJournal{}
	w := repository.NewJournalWriter(mem, 8, time.Second, quietLogger())
	go w.Run()

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		if err := w.Append(context.Background(), &domain.SpinRecord{ID: id}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	recs, _ := mem.snapshot()
	if len(recs) != len(ids) {
		t.Fatalf("written %d records, want %d", len(recs), len(ids))
	}
	for i, rec := range recs {
		if rec.ID != ids[i] {
			t.Errorf("record %d = %s, want %s", i, rec.ID, ids[i])
		}
	}
}

func TestJournalWriter_FullQueueDrops(t *testing.T) {
	mem := &memJournal{}
	w := repository.NewJournalWriter(mem, 2, time.Second, quietLogger())

	// Not running yet: the queue fills up.
	for i := 0; i < 2; i++ {
		if err := w.Append(context.Background(), &domain.SpinRecord{ID: uuid.New()}); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}
	if err := w.Append(context.Background(), &domain.SpinRecord{ID: uuid.New()}); !errors.Is(err, repository.ErrJournalFull) {
		t.Fatalf("third Append = %v, want ErrJournalFull", err)
	}
	if w.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", w.Pending())
	}

	go w.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if recs, _ := mem.snapshot(); len(recs) != 2 {
		t.Errorf("written %d records, want 2", len(recs))
	}
}

func TestJournalWriter_RejectsAfterStop(t *testing.T) {
	w := repository.NewJournalWriter(&memJournal{}, 4, time.Second, quietLogger())
	go w.Run()
	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := w.Append(context.Background(), &domain.SpinRecord{}); !errors.Is(err, repository.ErrJournalClosed) {
		t.Errorf("Append after Stop = %v, want ErrJournalClosed", err)
	}
	// Stop is idempotent.
	if err := w.Stop(context.Background()); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestJournalWriter_WriteTimeoutIgnoresCallerContext(t *testing.T) {
	mem := &memJournal{wait: true}
	w := repository.NewJournalWriter(mem, 4, 20*time.Millisecond, quietLogger())
	go w.Run()

	// The caller's context is already cancelled; the write still gets its own
	// deadline.
	reqCtx, cancelReq := context.WithCancel(context.Background())
	cancelReq()
	if err := w.Append(reqCtx, &domain.SpinRecord{ID: uuid.New()}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	_, errs := mem.snapshot()
	if len(errs) != 1 || !errors.Is(errs[0], context.DeadlineExceeded) {
		t.Errorf("write errors = %v, want one DeadlineExceeded", errs)
	}
}

func TestJournalWriter_StopHonoursContext(t *testing.T) {
	// Run is never started, so nothing drains the queue.
	w := repository.NewJournalWriter(&memJournal{}, 4, time.Second, quietLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := w.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Stop = %v, want DeadlineExceeded", err)
	}
}
