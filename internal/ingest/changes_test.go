package ingest

import (
	"testing"
	"time"

	"github.com/prachitbhike/thirteen/internal/models"
)

var (
	q1 = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	q2 = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
)

func holdingAt(period time.Time, shares, value int64) *models.Holding {
	return &models.Holding{
		FundManagerID: "manager-1",
		SecurityID:    "security-1",
		PeriodEnd:     period,
		Shares:        shares,
		Value:         value,
	}
}

func TestDiffHoldingsIncrease(t *testing.T) {
	prev := holdingAt(q1, 10_000, 1_000_000)
	cur := holdingAt(q2, 15_000, 1_500_000)

	change := DiffHoldings(prev, cur)

	if change.ChangeType != models.ChangeIncreased {
		t.Errorf("expected INCREASED, got %s", change.ChangeType)
	}
	if change.SharesChange != 5_000 {
		t.Errorf("expected shares change 5000, got %d", change.SharesChange)
	}
	if change.ValueChange != 500_000 {
		t.Errorf("expected value change 500000, got %d", change.ValueChange)
	}
	if change.PercentChange != 50 {
		t.Errorf("expected +50%%, got %f", change.PercentChange)
	}
	if !change.FromPeriod.Equal(q1) || !change.ToPeriod.Equal(q2) {
		t.Errorf("unexpected period bounds: %s -> %s", change.FromPeriod, change.ToPeriod)
	}
}

func TestDiffHoldingsDecrease(t *testing.T) {
	prev := holdingAt(q1, 20_000, 2_000_000)
	cur := holdingAt(q2, 5_000, 500_000)

	change := DiffHoldings(prev, cur)

	if change.ChangeType != models.ChangeDecreased {
		t.Errorf("expected DECREASED, got %s", change.ChangeType)
	}
	if change.SharesChange != -15_000 || change.ValueChange != -1_500_000 {
		t.Errorf("unexpected deltas: %d shares, %d value", change.SharesChange, change.ValueChange)
	}
	if change.PercentChange != -75 {
		t.Errorf("expected -75%%, got %f", change.PercentChange)
	}
}

func TestDiffHoldingsUnchangedShares(t *testing.T) {
	// Same share count with a different market value is UNCHANGED; the
	// classification follows shares, not price movement.
	prev := holdingAt(q1, 10_000, 1_000_000)
	cur := holdingAt(q2, 10_000, 1_200_000)

	change := DiffHoldings(prev, cur)

	if change.ChangeType != models.ChangeUnchanged {
		t.Errorf("expected UNCHANGED, got %s", change.ChangeType)
	}
	if change.PercentChange != 20 {
		t.Errorf("expected +20%% value change, got %f", change.PercentChange)
	}
}

func TestDiffHoldingsZeroPriorValue(t *testing.T) {
	prev := holdingAt(q1, 0, 0)
	cur := holdingAt(q2, 1_000, 100_000)

	change := DiffHoldings(prev, cur)

	if change.PercentChange != 100 {
		t.Errorf("expected +100%% from zero base, got %f", change.PercentChange)
	}
	if change.ChangeType != models.ChangeIncreased {
		t.Errorf("expected INCREASED, got %s", change.ChangeType)
	}

	// Zero to zero stays at 0%.
	flat := DiffHoldings(prev, holdingAt(q2, 0, 0))
	if flat.PercentChange != 0 {
		t.Errorf("expected 0%% for zero-to-zero, got %f", flat.PercentChange)
	}
}

func TestNewAndSoldPositions(t *testing.T) {
	cur := holdingAt(q2, 1_000, 100_000)
	change := newPosition(cur, q1)
	if change.ChangeType != models.ChangeNew {
		t.Errorf("expected NEW, got %s", change.ChangeType)
	}
	if change.SharesChange != 1_000 || change.ValueChange != 100_000 {
		t.Errorf("unexpected deltas: %+v", change)
	}
	if change.PercentChange != 100 {
		t.Errorf("expected +100%%, got %f", change.PercentChange)
	}

	prev := holdingAt(q1, 2_000, 300_000)
	change = soldPosition(prev, q2)
	if change.ChangeType != models.ChangeSold {
		t.Errorf("expected SOLD, got %s", change.ChangeType)
	}
	if change.SharesChange != -2_000 || change.ValueChange != -300_000 {
		t.Errorf("unexpected deltas: %+v", change)
	}
	if change.PercentChange != -100 {
		t.Errorf("expected -100%%, got %f", change.PercentChange)
	}
}

func TestLatestPerPeriodPrefersNewestProcessing(t *testing.T) {
	older := holdingAt(q2, 1_000, 100_000)
	older.CreatedAt = time.Date(2024, 8, 14, 10, 0, 0, 0, time.UTC)
	amended := holdingAt(q2, 1_500, 150_000)
	amended.CreatedAt = time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	earlier := holdingAt(q1, 500, 50_000)
	earlier.CreatedAt = older.CreatedAt

	latest := latestPerPeriod([]*models.Holding{older, amended, earlier})

	if len(latest) != 2 {
		t.Fatalf("expected one holding per period, got %d", len(latest))
	}
	if !latest[0].PeriodEnd.Equal(q2) || latest[0].Shares != 1_500 {
		t.Errorf("expected the amended q2 holding first, got %+v", latest[0])
	}
	if !latest[1].PeriodEnd.Equal(q1) {
		t.Errorf("expected q1 second, got %+v", latest[1])
	}
}
