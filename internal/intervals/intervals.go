// Package intervals provides pure functions over closed integer intervals.
//
// Intervals are [Start, End] pairs in minutes (minutes-of-day for operating
// hours, absolute minutes for multi-day ranges) with Start <= End. All
// functions are allocation-light, side-effect free, and safe for concurrent
// use.
package intervals

import "sort"

// Interval is a closed [Start, End] range of integer minutes.
type Interval struct {
	Start int
	End   int
}

// Contains reports whether m lies within the interval, endpoints included.
func (iv Interval) Contains(m int) bool {
	return iv.Start <= m && m <= iv.End
}

// Union sorts and merges overlapping or adjacent intervals into the minimal
// covering set, preserving start order. The input slice is not modified.
// Empty input yields an empty result.
func Union(ivs []Interval) []Interval {
	if len(ivs) == 0 {
		return []Interval{}
	}

	sorted := make([]Interval, len(ivs))
	copy(sorted, ivs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	out := make([]Interval, 0, len(sorted))
	current := sorted[0]
	for _, iv := range sorted[1:] {
		if iv.Start <= current.End {
			if iv.End > current.End {
				current.End = iv.End
			}
			continue
		}
		out = append(out, current)
		current = iv
	}
	return append(out, current)
}

// Subtract removes from every interval in a the portions covered by any
// interval in b, at the given step granularity: when b covers a up to
// position p, the remainder resumes at p + step, and a remainder cut short
// by a covering interval ends step minutes before that interval begins.
// The granularity rule prevents zero-width fragments and keeps results
// aligned to the caller's slot resolution.
//
// Both inputs are assumed sorted by start (as produced by Union). Only
// non-empty remainders are kept, in start order. Empty a yields an empty
// result; empty b yields a unchanged.
func Subtract(a, b []Interval, step int) []Interval {
	out := make([]Interval, 0, len(a))

	for _, iv := range a {
		start := iv.Start
		for _, sub := range b {
			if start > iv.End {
				break
			}
			if sub.End < start || sub.Start > iv.End {
				continue
			}
			if sub.Start <= start {
				// Prefix of the remainder is covered; resume past it.
				start = sub.End + step
				continue
			}
			// Gap before this covering interval becomes a remainder.
			if end := sub.Start - step; end >= start {
				out = append(out, Interval{Start: start, End: end})
			}
			start = sub.End + step
		}
		if start <= iv.End {
			out = append(out, Interval{Start: start, End: iv.End})
		}
	}

	return out
}
