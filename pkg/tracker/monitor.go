package tracker

import (
	"sort"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

// QueryChange is one significant position move between two monitor runs.
type QueryChange struct {
	Query        string
	PrevPosition float64
	CurrPosition float64
	Delta        float64
	Clicks       int
	Impressions  int
}

// SnapshotDiff is the outcome of comparing two monitor snapshots of a site.
// Queries are classified as new or dropped before the position comparison,
// so a query never appears in two buckets.
type SnapshotDiff struct {
	New     []QueryChange
	Dropped []QueryChange
	Changed []QueryChange
}

// Empty reports whether the diff found nothing worth showing.
func (d SnapshotDiff) Empty() bool {
	return len(d.New) == 0 && len(d.Dropped) == 0 && len(d.Changed) == 0
}

// CompareSnapshots diffs the previous and current query maps of one site.
// A position move is significant when its absolute delta meets the
// threshold; a delta exactly at the threshold is included. Delta is
// prev minus curr, so positive means the query moved up.
func CompareSnapshots(prev, curr map[string]models.QueryStats, threshold float64) SnapshotDiff {
	var diff SnapshotDiff

	for query, stats := range curr {
		prevStats, seen := prev[query]
		if !seen {
			diff.New = append(diff.New, QueryChange{
				Query:        query,
				CurrPosition: stats.Position,
				Clicks:       stats.Clicks,
				Impressions:  stats.Impressions,
			})
			continue
		}
		delta := prevStats.Position - stats.Position
		if delta >= threshold || -delta >= threshold {
			diff.Changed = append(diff.Changed, QueryChange{
				Query:        query,
				PrevPosition: prevStats.Position,
				CurrPosition: stats.Position,
				Delta:        delta,
				Clicks:       stats.Clicks,
				Impressions:  stats.Impressions,
			})
		}
	}

	for query, stats := range prev {
		if _, still := curr[query]; !still {
			diff.Dropped = append(diff.Dropped, QueryChange{
				Query:        query,
				PrevPosition: stats.Position,
				Clicks:       stats.Clicks,
				Impressions:  stats.Impressions,
			})
		}
	}

	sortChanges(diff.New, func(c QueryChange) float64 { return -float64(c.Impressions) })
	sortChanges(diff.Dropped, func(c QueryChange) float64 { return -float64(c.Impressions) })
	sortChanges(diff.Changed, func(c QueryChange) float64 { return -abs(c.Delta) })

	return diff
}

func sortChanges(changes []QueryChange, rank func(QueryChange) float64) {
	sort.SliceStable(changes, func(i, j int) bool {
		ri, rj := rank(changes[i]), rank(changes[j])
		if ri != rj {
			return ri < rj
		}
		return changes[i].Query < changes[j].Query
	})
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
