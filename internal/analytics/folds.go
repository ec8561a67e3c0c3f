// Package analytics holds the pure aggregation folds behind the analytics and
// dashboard pages. Nothing here performs I/O; callers pass the current time.
package analytics

import (
	"fmt"
	"slices"
	"time"
)

// List sizes used by the analytics views
const (
	RecentLimit        = 10
	UpcomingLimit      = 10
	UpcomingWindowDays = 7
	TopDealsLimit      = 10
	RecentWinsLimit    = 5
	TopProductsLimit   = 5
	TopPerformersLimit = 5
	averageWindowDays  = 30
	monthLabelLayout   = "Jan 2006"
)

// Rate formats matching/total as a percentage with one decimal. A zero total
// yields "0".
func Rate(matching, total int) string {
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", float64(matching)/float64(total)*100)
}

// perDay formats total/days with one decimal, or "0" when total is zero
func perDay(total, days int) string {
	if total == 0 || days <= 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", float64(total)/float64(days))
}

// MonthStart returns the first instant of now's calendar month in now's location
func MonthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// Today returns midnight of now's day in now's location
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Since returns the boundary days*24h before now
func Since(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// AtOrAfter reports whether t lies on or after boundary
func AtOrAfter(t, boundary time.Time) bool {
	return !t.Before(boundary)
}

// CountSince counts the times at or after boundary
func CountSince(times []time.Time, boundary time.Time) int {
	n := 0
	for _, t := range times {
		if AtOrAfter(t, boundary) {
			n++
		}
	}
	return n
}

// TopN sorts a copy of items by measure descending and keeps the first n.
// Items with equal measure keep their input order.
func TopN[T any](items []T, n int, measure func(T) float64) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		ma, mb := measure(a), measure(b)
		switch {
		case ma > mb:
			return -1
		case ma < mb:
			return 1
		default:
			return 0
		}
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []T{}
	}
	return sorted
}

// First returns at most n leading items, never nil
func First[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}

// UnreadCount returns how many of candidates are absent from viewed
func UnreadCount(candidates, viewed []int64) int {
	seen := make(map[int64]struct{}, len(viewed))
	for _, id := range viewed {
		seen[id] = struct{}{}
	}
	n := 0
	for _, id := range candidates {
		if _, ok := seen[id]; !ok {
			n++
		}
	}
	return n
}
