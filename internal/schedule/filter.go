// Package schedule derives the views shown to the dispatcher from the raw
// delivery collection: the day's schedule, autocomplete sets and the
// selection used for manifests.
package schedule

import (
	"slices"
	"time"

	"github.com/sgrm/scheduler/internal/delivery"
)

// ForDay returns the deliveries whose requested day equals day
// (YYYY-MM-DD), earliest first. The input is left untouched.
func ForDay(all []delivery.Delivery, day string, loc *time.Location) []delivery.Delivery {
	out := make([]delivery.Delivery, 0, len(all))
	for _, d := range all {
		if d.RequestedAt.Day() == day {
			out = append(out, d)
		}
	}
	SortByRequestedAt(out, loc)
	return out
}

// SortByRequestedAt orders ds in place by requested instant. Timestamps that
// do not parse go last; equal keys keep their relative order.
func SortByRequestedAt(ds []delivery.Delivery, loc *time.Location) {
	type keyed struct {
		at time.Time
		ok bool
	}
	cache := make([]keyed, len(ds))
	for i := range ds {
		at, ok := ds[i].RequestedAt.Parse(loc)
		cache[i] = keyed{at: at, ok: ok}
	}

	idx := make([]int, len(ds))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		ka, kb := cache[a], cache[b]
		switch {
		case ka.ok && !kb.ok:
			return -1
		case !ka.ok && kb.ok:
			return 1
		case !ka.ok && !kb.ok:
			return 0
		}
		return ka.at.Compare(kb.at)
	})

	sorted := make([]delivery.Delivery, len(ds))
	for i, j := range idx {
		sorted[i] = ds[j]
	}
	copy(ds, sorted)
}

// ForReport restricts visible to the selected deliveries, earliest first.
// Selected ids missing from visible are dropped, so a delivery moved to
// another day after being selected never reaches that day's manifest.
func ForReport(visible []delivery.Delivery, sel Selection, loc *time.Location) []delivery.Delivery {
	out := make([]delivery.Delivery, 0, sel.Len())
	for _, d := range visible {
		if d.Persisted() && sel.Contains(d.Key()) {
			out = append(out, d)
		}
	}
	SortByRequestedAt(out, loc)
	return out
}
