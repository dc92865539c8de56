package ingest

import (
	"context"
	"sort"
	"time"

	"github.com/prachitbhike/thirteen/internal/models"
)

// pairKey identifies one (fund manager, security) position series.
type pairKey struct {
	fundManagerID string
	securityID    string
}

// DiffHoldings compares one position across two adjacent periods and
// produces the derived change record. Pure function: safe to recompute.
// A prior value of zero yields +100% if the new value is positive, else
// 0%; classification follows the sign of the share delta.
func DiffHoldings(prev, cur *models.Holding) models.PositionChange {
	sharesChange := cur.Shares - prev.Shares
	valueChange := cur.Value - prev.Value

	var percentChange float64
	switch {
	case prev.Value != 0:
		percentChange = float64(valueChange) / float64(prev.Value) * 100
	case cur.Value > 0:
		percentChange = 100
	}

	changeType := models.ChangeUnchanged
	if sharesChange > 0 {
		changeType = models.ChangeIncreased
	} else if sharesChange < 0 {
		changeType = models.ChangeDecreased
	}

	return models.PositionChange{
		FundManagerID: cur.FundManagerID,
		SecurityID:    cur.SecurityID,
		FromPeriod:    prev.PeriodEnd,
		ToPeriod:      cur.PeriodEnd,
		SharesChange:  sharesChange,
		ValueChange:   valueChange,
		PercentChange: percentChange,
		ChangeType:    changeType,
	}
}

// newPosition builds the change record for a security's first appearance
// in a fund's holdings.
func newPosition(cur *models.Holding, fromPeriod time.Time) models.PositionChange {
	percentChange := 0.0
	if cur.Value > 0 {
		percentChange = 100
	}
	return models.PositionChange{
		FundManagerID: cur.FundManagerID,
		SecurityID:    cur.SecurityID,
		FromPeriod:    fromPeriod,
		ToPeriod:      cur.PeriodEnd,
		SharesChange:  cur.Shares,
		ValueChange:   cur.Value,
		PercentChange: percentChange,
		ChangeType:    models.ChangeNew,
	}
}

// soldPosition builds the change record for a security's disappearance
// from a fund's holdings.
func soldPosition(prev *models.Holding, toPeriod time.Time) models.PositionChange {
	percentChange := 0.0
	if prev.Value > 0 {
		percentChange = -100
	}
	return models.PositionChange{
		FundManagerID: prev.FundManagerID,
		SecurityID:    prev.SecurityID,
		FromPeriod:    prev.PeriodEnd,
		ToPeriod:      toPeriod,
		SharesChange:  -prev.Shares,
		ValueChange:   -prev.Value,
		PercentChange: percentChange,
		ChangeType:    models.ChangeSold,
	}
}

// recomputePositionChanges derives change records over the recent
// holdings window. For every (fund, security) pair spanning at least two
// distinct period-end dates, the two most recent are diffed. In addition,
// each fund's two most recent periods are compared set-wise: securities
// present only in the newer period become NEW, present only in the older
// become SOLD. Writes are upserts, so repeated recomputation converges.
func (o *Orchestrator) recomputePositionChanges(ctx context.Context) (int, []FilingError) {
	cutoff := time.Now().UTC().Add(-o.changeWindow)
	holdings, err := o.store.HoldingsSince(ctx, cutoff)
	if err != nil {
		return 0, []FilingError{{Err: err}}
	}

	pairs := make(map[pairKey][]*models.Holding)
	fundPeriods := make(map[string]map[time.Time]struct{})
	for i := range holdings {
		h := &holdings[i]
		key := pairKey{h.FundManagerID, h.SecurityID}
		pairs[key] = append(pairs[key], h)
		if fundPeriods[h.FundManagerID] == nil {
			fundPeriods[h.FundManagerID] = make(map[time.Time]struct{})
		}
		fundPeriods[h.FundManagerID][h.PeriodEnd] = struct{}{}
	}

	// Changes are keyed the same way the table is, so the set-wise pass
	// below replaces a pairwise diff for the same (fund, security,
	// toPeriod) before anything is written. A position absent for a
	// period and re-entered therefore records as NEW, not as a diff
	// against its stale last sighting.
	type changeKey struct {
		pairKey
		toPeriod time.Time
	}
	changes := make(map[changeKey]models.PositionChange)

	// Pairwise diffs over each series' two most recent periods.
	for key, series := range pairs {
		latest := latestPerPeriod(series)
		if len(latest) < 2 {
			continue
		}
		changes[changeKey{key, latest[0].PeriodEnd}] = DiffHoldings(latest[1], latest[0])
	}

	// First appearances and disappearances against each fund's two most
	// recent periods.
	for fundID, periodSet := range fundPeriods {
		periods := sortedPeriodsDesc(periodSet)
		if len(periods) < 2 {
			continue
		}
		cur, prev := periods[0], periods[1]
		for key, series := range pairs {
			if key.fundManagerID != fundID {
				continue
			}
			curH := holdingForPeriod(series, cur)
			prevH := holdingForPeriod(series, prev)
			switch {
			case curH != nil && prevH == nil:
				changes[changeKey{key, cur}] = newPosition(curH, prev)
			case curH == nil && prevH != nil:
				changes[changeKey{key, cur}] = soldPosition(prevH, cur)
			}
		}
	}

	var errs []FilingError
	written := 0
	for _, change := range changes {
		change := change
		if err := o.store.UpsertPositionChange(ctx, &change); err != nil {
			errs = append(errs, FilingError{Err: err})
			continue
		}
		written++
	}
	return written, errs
}

// latestPerPeriod collapses a series to one holding per period (the most
// recently processed wins, covering amendment re-ingestion) and returns
// them newest first.
func latestPerPeriod(series []*models.Holding) []*models.Holding {
	byPeriod := make(map[time.Time]*models.Holding)
	for _, h := range series {
		if existing, ok := byPeriod[h.PeriodEnd]; !ok || h.CreatedAt.After(existing.CreatedAt) {
			byPeriod[h.PeriodEnd] = h
		}
	}
	out := make([]*models.Holding, 0, len(byPeriod))
	for _, h := range byPeriod {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodEnd.After(out[j].PeriodEnd) })
	return out
}

func sortedPeriodsDesc(periodSet map[time.Time]struct{}) []time.Time {
	periods := make([]time.Time, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].After(periods[j]) })
	return periods
}

func holdingForPeriod(series []*models.Holding, period time.Time) *models.Holding {
	var match *models.Holding
	for _, h := range series {
		if h.PeriodEnd.Equal(period) {
			if match == nil || h.CreatedAt.After(match.CreatedAt) {
				match = h
			}
		}
	}
	return match
}
