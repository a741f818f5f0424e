// Package progress computes the fulfilment bar for linear status flows.
package progress

import "bizflow/internal/models"

// OrderPath is the happy path of order fulfilment.
var OrderPath = []models.Status{"pending", "confirmed", "processing", "shipped", "delivered"}

var orderTerminal = map[models.Status]bool{
	"cancelled": true,
	"refunded":  true,
}

type Result struct {
	Percent  float64        `json:"percent"`
	Variant  models.Variant `json:"variant"`
	Terminal bool           `json:"terminal"`
}

// Order renders cancelled and refunded orders as a full-width error bar.
func Order(status models.Status) Result {
	status = status.Normalize()
	if orderTerminal[status] {
		return Result{Percent: 100, Variant: models.VariantError, Terminal: true}
	}
	return Linear(OrderPath, status)
}

// Linear maps status to index/(len-1). Statuses off the path give 0.
func Linear(path []models.Status, status models.Status) Result {
	status = status.Normalize()
	idx := -1
	for i, s := range path {
		if s == status {
			idx = i
			break
		}
	}
	if idx < 0 || len(path) < 2 {
		return Result{Percent: 0, Variant: models.VariantNeutral}
	}
	pct := float64(idx) / float64(len(path)-1) * 100
	variant := models.VariantInfo
	if idx == len(path)-1 {
		variant = models.VariantSuccess
	}
	return Result{Percent: pct, Variant: variant}
}
