// Package vocabulary is the single status table for every entity kind.
package vocabulary

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bizflow/internal/models"
)

// Default is returned for absent or unrecognized statuses.
var Default = models.Descriptor{
	Status:  "pending",
	Label:   "Pending",
	Variant: models.VariantNeutral,
	Icon:    "circle",
	Known:   false,
}

func lookup(kind models.Kind, status models.Status) (entry, bool) {
	status = status.Normalize()
	for _, e := range tables[kind] {
		if e.status == status {
			return e, true
		}
	}
	return entry{}, false
}

// Describe never fails: anything outside the kind's table gets Default.
func Describe(kind models.Kind, status models.Status) models.Descriptor {
	e, ok := lookup(kind, status)
	if !ok {
		return Default
	}
	return models.Descriptor{
		Status:  e.status,
		Label:   e.label,
		Variant: e.variant,
		Icon:    e.icon,
		Known:   true,
	}
}

func DescribeAll(kind models.Kind) []models.Descriptor {
	entries := tables[kind]
	res := make([]models.Descriptor, 0, len(entries))
	for _, e := range entries {
		res = append(res, Describe(kind, e.status))
	}
	return res
}

func Statuses(kind models.Kind) []models.Status {
	entries := tables[kind]
	res := make([]models.Status, 0, len(entries))
	for _, e := range entries {
		res = append(res, e.status)
	}
	return res
}

func Kinds() []models.Kind {
	res := make([]models.Kind, len(kindOrder))
	copy(res, kindOrder)
	return res
}

func IsKind(kind models.Kind) bool {
	_, ok := tables[kind]
	return ok
}

// Initial returns the status a freshly created record of kind starts in.
func Initial(kind models.Kind) (models.Status, bool) {
	entries := tables[kind]
	if len(entries) == 0 {
		return "", false
	}
	return entries[0].status, true
}

func IsKnown(kind models.Kind, status models.Status) bool {
	_, ok := lookup(kind, status)
	return ok
}

func IsTerminal(kind models.Kind, status models.Status) bool {
	e, ok := lookup(kind, status)
	return ok && e.terminal
}

// Humanize turns "checked_in" into "Checked In".
func Humanize(status models.Status) string {
	s := strings.TrimSpace(string(status))
	if s == "" {
		return Default.Label
	}
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return cases.Title(language.English).String(s)
}
