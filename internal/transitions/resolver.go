// Package transitions resolves which status changes a user may request next.
package transitions

import (
	"bizflow/internal/models"
	"bizflow/internal/vocabulary"
)

// NextActions returns the ordered actions available from current.
// Unknown kinds and statuses yield an empty, non-nil slice.
func NextActions(kind models.Kind, current models.Status) []models.Action {
	current = current.Normalize()
	actions := graph[kind][current]
	res := make([]models.Action, len(actions))
	copy(res, actions)
	return res
}

func CanTransition(kind models.Kind, from, to models.Status) bool {
	to = to.Normalize()
	for _, a := range NextActions(kind, from) {
		if a.Target == to {
			return true
		}
	}
	return false
}

// Validate reports why from->to is rejected, or nil if the graph allows it.
func Validate(kind models.Kind, from, to models.Status) error {
	if !vocabulary.IsKind(kind) {
		return models.ErrUnknownKind(kind)
	}
	if !vocabulary.IsKnown(kind, to) {
		return models.ErrUnknownStatus(kind, to)
	}
	if !CanTransition(kind, from, to) {
		return models.ErrTransitionNotAllowed(kind, from, to)
	}
	return nil
}
