package vocabulary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizflow/internal/models"
)

func TestDescribeKnownStatuses(t *testing.T) {
	for _, kind := range Kinds() {
		for _, st := range Statuses(kind) {
			d := Describe(kind, st)
			assert.True(t, d.Known, "%s/%s", kind, st)
			assert.NotEmpty(t, d.Label, "%s/%s", kind, st)
			assert.NotEmpty(t, d.Variant, "%s/%s", kind, st)
			assert.Equal(t, st, d.Status)
		}
	}
}

func TestDescribeFallsBackToDefault(t *testing.T) {
	cases := []struct {
		kind   models.Kind
		status models.Status
	}{
		{models.KindOrder, ""},
		{models.KindOrder, "teleported"},
		{models.KindInvoice, "checked_in"},
		{"spaceship", "pending"},
		{"", ""},
	}
	for _, c := range cases {
		assert.NotPanics(t, func() {
			assert.Equal(t, Default, Describe(c.kind, c.status))
		})
	}
}

func TestDescribeNormalizesCase(t *testing.T) {
	d := Describe(models.KindReservation, " Checked_In ")
	assert.True(t, d.Known)
	assert.Equal(t, "Checked In", d.Label)
	assert.Equal(t, models.VariantSuccess, d.Variant)
}

func TestSameSemanticStatusSharesVariant(t *testing.T) {
	for _, kind := range Kinds() {
		if IsKnown(kind, "cancelled") {
			assert.Equal(t, models.VariantError, Describe(kind, "cancelled").Variant, kind)
		}
	}
}

func TestInitialAndTerminal(t *testing.T) {
	st, ok := Initial(models.KindInvoice)
	require.True(t, ok)
	assert.Equal(t, models.Status("draft"), st)

	_, ok = Initial("spaceship")
	assert.False(t, ok)

	assert.True(t, IsTerminal(models.KindOrder, "delivered"))
	assert.False(t, IsTerminal(models.KindOrder, "shipped"))
	assert.False(t, IsTerminal(models.KindOrder, "nope"))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Viewing Scheduled", Humanize("viewing_scheduled"))
	assert.Equal(t, "Check Out", Humanize("check-out"))
	assert.Equal(t, "Pending", Humanize(""))
}
