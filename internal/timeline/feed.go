package timeline

import (
	"sort"
	"time"

	"bizflow/internal/models"
)

type Entry struct {
	Activity models.Activity `json:"activity"`
	When     string          `json:"when"`
}

// Feed orders activities newest first and attaches a relative label.
func Feed(activities []models.Activity, now time.Time) []Entry {
	sorted := make([]models.Activity, len(activities))
	copy(sorted, activities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	res := make([]Entry, 0, len(sorted))
	for _, a := range sorted {
		res = append(res, Entry{Activity: a, When: Relative(a.CreatedAt, now)})
	}
	return res
}
