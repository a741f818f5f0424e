// Package presenter turns ledger data into what a page renders: badges,
// action buttons, progress bars and list states.
package presenter

import (
	"time"

	"bizflow/internal/models"
	"bizflow/internal/progress"
	"bizflow/internal/timeline"
	"bizflow/internal/transitions"
	"bizflow/internal/vocabulary"
)

type View struct {
	Record     models.Record
	Descriptor models.Descriptor
	Actions    []models.Action
	// Progress is set for orders only.
	Progress *progress.Result
}

func RecordView(r models.Record) View {
	v := View{
		Record:     r,
		Descriptor: vocabulary.Describe(r.Kind, r.Status),
		Actions:    transitions.NextActions(r.Kind, r.Status),
	}
	if r.Kind == models.KindOrder {
		p := progress.Order(r.Status)
		v.Progress = &p
	}
	return v
}

// Updated is the relative age of the record's last change.
func (v View) Updated(now time.Time) string {
	return timeline.Relative(v.Record.UpdatedAt, now)
}

func RecordViews(records []models.Record) []View {
	views := make([]View, 0, len(records))
	for _, r := range records {
		views = append(views, RecordView(r))
	}
	return views
}
