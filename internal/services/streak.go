package services

import (
	"sort"
	"time"
)

// ComputeStreaks returns the current and longest run of consecutive UTC days
// in days. The current streak is zero unless the latest day is today or
// yesterday.
func ComputeStreaks(days []time.Time, today time.Time) (current, longest int) {
	if len(days) == 0 {
		return 0, 0
	}

	unique := make(map[time.Time]struct{}, len(days))
	for _, d := range days {
		unique[truncateDay(d)] = struct{}{}
	}
	sorted := make([]time.Time, 0, len(unique))
	for d := range unique {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	run := 1
	longest = 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Sub(sorted[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	last := sorted[len(sorted)-1]
	todayDay := truncateDay(today)
	if last.Equal(todayDay) || last.Equal(todayDay.AddDate(0, 0, -1)) {
		current = run
	}
	return current, longest
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
