package repository_test

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/evetabi/slot/internal/domain"
	"github.com/evetabi/slot/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var n atomic.Int64
	return func() time.Time {
		return base.Add(time.Duration(n.Add(1)) * time.Second)
	}
}

func newLedger() *repository.Ledger {
	return repository.NewLedger(repository.LedgerConfig{
		Clock:           tickingClock(),
		StartingBalance: dec("1.5"),
		Retention:       20,
		PageSize:        10,
		Pool: domain.PoolStats{
			TotalLiquidity: dec("1250.45"),
			UserShare:      dec("0.05"),
			Volume24h:      dec("342.18"),
			APY:            dec("12.5"),
		},
	})
}

// ── Balances ──────────────────────────────────────────────────────────────────

func TestLedger_LazyStartingBalance(t *testing.T) {
	l := newLedger()
	if got := l.GetBalance("0xabc"); !got.Equal(dec("1.5")) {
		t.Errorf("first balance = %s, want 1.5", got)
	}
	if l.Wallets() != 1 {
		t.Errorf("Wallets() = %d, want 1", l.Wallets())
	}
}

func TestLedger_DebitThenCredit(t *testing.T) {
	l := newLedger()

	got, err := l.DebitThenCredit("w", dec("0.5"), dec("2.5"))
	if err != nil {
		t.Fatalf("DebitThenCredit: %v", err)
	}
	if want := dec("3.5"); !got.Equal(want) {
		t.Errorf("new balance = %s, want %s", got, want)
	}
	if !l.GetBalance("w").Equal(dec("3.5")) {
		t.Errorf("stored balance = %s, want 3.5", l.GetBalance("w"))
	}
}

func TestLedger_ExactBalanceCanBeStaked(t *testing.T) {
	l := newLedger()
	got, err := l.DebitThenCredit("w", dec("1.5"), decimal.Zero)
	if err != nil {
		t.Fatalf("staking the whole balance: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("balance = %s, want 0", got)
	}
}

func TestLedger_InsufficientBalance_NoSideEffects(t *testing.T) {
	l := newLedger()
	called := false

	_, err := l.Transact("w", dec("1.51"), func() (decimal.Decimal, error) {
		called = true
		return decimal.Zero, nil
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if called {
		t.Error("resolve must not run when the bet cannot be covered")
	}
	if !l.GetBalance("w").Equal(dec("1.5")) {
		t.Errorf("balance changed to %s", l.GetBalance("w"))
	}
}

func TestLedger_NegativeBetRejected(t *testing.T) {
	l := newLedger()
	if _, err := l.DebitThenCredit("w", dec("-1"), decimal.Zero); !errors.Is(err, domain.ErrInvalidBet) {
		t.Errorf("err = %v, want ErrInvalidBet", err)
	}
}

// ── Rollback ──────────────────────────────────────────────────────────────────

func TestLedger_RollbackOnError(t *testing.T) {
	l := newLedger()
	boom := errors.New("boom")

	_, err := l.Transact("w", dec("1"), func() (decimal.Decimal, error) {
		return decimal.Zero, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if !l.GetBalance("w").Equal(dec("1.5")) {
		t.Errorf("balance after failed resolve = %s, want 1.5", l.GetBalance("w"))
	}
}

func TestLedger_RollbackOnPanic(t *testing.T) {
	l := newLedger()

	s, err := l.Transact("w", dec("1"), func() (decimal.Decimal, error) {
		panic("reel jammed")
	})
	if err == nil {
		t.Fatal("expected error from panicking resolve")
	}
	if !s.BalanceAfter.IsZero() || !s.BalanceBefore.IsZero() {
		t.Errorf("settlement should be empty on failure, got %+v", s)
	}
	if !l.GetBalance("w").Equal(dec("1.5")) {
		t.Errorf("balance after panic = %s, want 1.5", l.GetBalance("w"))
	}

	// The wallet lock must have been released.
	if _, err := l.DebitThenCredit("w", dec("0.5"), decimal.Zero); err != nil {
		t.Errorf("wallet unusable after panic: %v", err)
	}
}

func TestLedger_RollbackOnNegativePayout(t *testing.T) {
	l := newLedger()
	if _, err := l.DebitThenCredit("w", dec("1"), dec("-5")); err == nil {
		t.Fatal("expected error for negative payout")
	}
	if !l.GetBalance("w").Equal(dec("1.5")) {
		t.Errorf("balance = %s, want 1.5", l.GetBalance("w"))
	}
}

// ── Concurrency ───────────────────────────────────────────────────────────────

// TestLedger_SameWalletSerialises fires N spins at a wallet that can cover
// exactly one of them; only one may succeed.
func TestLedger_SameWalletSerialises(t *testing.T) {
	const workers = 50
	l := newLedger()

	var ok, rejected int64
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, err := l.DebitThenCredit("shared", dec("1.0"), decimal.Zero)
			switch {
			case err == nil:
				atomic.AddInt64(&ok, 1)
			case errors.Is(err, domain.ErrInsufficientBalance):
				atomic.AddInt64(&rejected, 1)
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ok != 1 {
		t.Errorf("successful spins = %d, want 1", ok)
	}
	if rejected != workers-1 {
		t.Errorf("rejected spins = %d, want %d", rejected, workers-1)
	}
	if !l.GetBalance("shared").Equal(dec("0.5")) {
		t.Errorf("final balance = %s, want 0.5", l.GetBalance("shared"))
	}
}

// TestLedger_IntermediateStateHidden holds a wallet mid-transaction and
// checks a reader on the same wallet waits while another wallet proceeds.
func TestLedger_IntermediateStateHidden(t *testing.T) {
	l := newLedger()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = l.Transact("a", dec("1"), func() (decimal.Decimal, error) {
			close(entered)
			<-release
			return dec("2"), nil
		})
	}()
	<-entered

	// Other wallets are not blocked.
	if _, err := l.DebitThenCredit("b", dec("0.5"), decimal.Zero); err != nil {
		t.Fatalf("wallet b blocked or failed: %v", err)
	}

	read := make(chan decimal.Decimal)
	go func() { read <- l.GetBalance("a") }()

	select {
	case v := <-read:
		t.Fatalf("read %s while wallet a was mid-transaction", v)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-done
	if v := <-read; !v.Equal(dec("2.5")) {
		t.Errorf("balance after settle = %s, want 2.5", v)
	}
}

func TestLedger_DistinctWalletsConserve(t *testing.T) {
	const wallets = 20
	const spinsEach = 30
	l := newLedger()

	var g errgroup.Group
	for w := 0; w < wallets; w++ {
		wallet := fmt.Sprintf("w%02d", w)
		g.Go(func() error {
			for i := 0; i < spinsEach; i++ {
				if _, err := l.DebitThenCredit(wallet, dec("0.05"), dec("0.04")); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("spin failed: %v", err)
	}

	want := dec("1.5").Sub(dec("0.01").Mul(decimal.NewFromInt(spinsEach)))
	for w := 0; w < wallets; w++ {
		if got := l.GetBalance(fmt.Sprintf("w%02d", w)); !got.Equal(want) {
			t.Errorf("w%02d balance = %s, want %s", w, got, want)
		}
	}
}

// ── Feed & pool ───────────────────────────────────────────────────────────────

func TestLedger_RecentWinsRetention(t *testing.T) {
	l := newLedger()

	for i := 0; i < 25; i++ {
		l.RecordWin(domain.RecentWin{
			ID:      uuid.New(),
			Address: fmt.Sprintf("win-%02d", i),
			Amount:  decimal.NewFromInt(int64(i)),
			Symbol:  domain.SymbolCherry,
		})
	}

	if n := l.RetainedWins(); n != 20 {
		t.Errorf("retained = %d, want 20", n)
	}

	wins := l.RecentWins()
	if len(wins) != 10 {
		t.Fatalf("RecentWins() returned %d, want 10", len(wins))
	}
	for i, w := range wins {
		want := fmt.Sprintf("win-%02d", 24-i)
		if w.Address != want {
			t.Errorf("wins[%d] = %s, want %s", i, w.Address, want)
		}
		if i > 0 && !w.Timestamp.Before(wins[i-1].Timestamp) {
			t.Errorf("wins[%d] not older than wins[%d]", i, i-1)
		}
	}
}

func TestLedger_RecordWinStampsTimestamp(t *testing.T) {
	l := newLedger()
	stale := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	got := l.RecordWin(domain.RecentWin{Address: "x", Timestamp: stale})
	if got.Timestamp.Equal(stale) {
		t.Fatal("RecordWin kept the caller's timestamp")
	}
	if stored := l.RecentWins()[0]; !stored.Timestamp.Equal(got.Timestamp) {
		t.Errorf("stored timestamp %v, returned %v", stored.Timestamp, got.Timestamp)
	}
}

func TestLedger_ConcurrentWinsStayInTimestampOrder(t *testing.T) {
	const n = 200
	l := repository.NewLedger(repository.LedgerConfig{
		StartingBalance: dec("1.5"),
		Retention:       n,
		PageSize:        n,
		Clock:           tickingClock(),
	})

	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			l.RecordWin(domain.RecentWin{ID: uuid.New(), Address: fmt.Sprintf("w-%d", i)})
			return nil
		})
	}
	_ = g.Wait()

	wins := l.RecentWins()
	if len(wins) != n {
		t.Fatalf("RecentWins() returned %d, want %d", len(wins), n)
	}
	for i := 1; i < len(wins); i++ {
		if !wins[i].Timestamp.Before(wins[i-1].Timestamp) {
			t.Fatalf("wins[%d] at %v is not older than wins[%d] at %v",
				i, wins[i].Timestamp, i-1, wins[i-1].Timestamp)
		}
	}
}

func TestLedger_RecentWinsIsCopy(t *testing.T) {
	l := newLedger()
	l.RecordWin(domain.RecentWin{Address: "x"})

	wins := l.RecentWins()
	wins[0].Address = "mutated"
	if l.RecentWins()[0].Address != "x" {
		t.Error("RecentWins leaked internal state")
	}
}

func TestLedger_AccrueVolume(t *testing.T) {
	l := newLedger()

	var g errgroup.Group
	for i := 0; i < 100; i++ {
		g.Go(func() error {
			l.AccrueVolume(dec("0.01"))
			return nil
		})
	}
	_ = g.Wait()

	stats := l.PoolStats()
	if want := dec("343.18"); !stats.Volume24h.Equal(want) {
		t.Errorf("volume = %s, want %s", stats.Volume24h, want)
	}
	if !stats.TotalLiquidity.Equal(dec("1250.45")) || !stats.APY.Equal(dec("12.5")) {
		t.Errorf("static counters moved: %+v", stats)
	}
}
