package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"bizflow/internal/models"
)

func TestPutEvictsTerminal(t *testing.T) {
	c := NewActiveRecordsCache()
	r := &models.Record{ID: "1", Kind: models.KindOrder, Status: "pending"}
	c.Put(r)
	got, ok := c.Get(models.KindOrder, "1")
	assert.True(t, ok)
	assert.Equal(t, models.Status("pending"), got.Status)

	got.Status = "mutated"
	again, _ := c.Get(models.KindOrder, "1")
	assert.Equal(t, models.Status("pending"), again.Status)

	c.Put(&models.Record{ID: "1", Kind: models.KindOrder, Status: "cancelled"})
	_, ok = c.Get(models.KindOrder, "1")
	assert.False(t, ok)
}

func TestReplaceAndAutoRefresh(t *testing.T) {
	c := NewActiveRecordsCache()
	var calls int32
	load := func(context.Context) ([]*models.Record, error) {
		atomic.AddInt32(&calls, 1)
		return []*models.Record{
			{ID: "1", Kind: models.KindInvoice, Status: "sent"},
			{ID: "2", Kind: models.KindInvoice, Status: "paid"},
		}, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.StartAutoRefresh(ctx, load, 5*time.Millisecond, zap.NewNop())

	assert.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 5*time.Millisecond)
	_, ok := c.Get(models.KindInvoice, "2")
	assert.False(t, ok)
}

func TestReplaceKeepsWritesNewerThanSnapshot(t *testing.T) {
	c := NewActiveRecordsCache()
	c.Put(&models.Record{ID: "1", Kind: models.KindOrder, Status: "pending"})
	c.Put(&models.Record{ID: "2", Kind: models.KindOrder, Status: "pending"})
	c.Put(&models.Record{ID: "3", Kind: models.KindOrder, Status: "pending"})

	since := c.Generation()
	snapshot := []*models.Record{
		{ID: "1", Kind: models.KindOrder, Status: "pending"},
		{ID: "2", Kind: models.KindOrder, Status: "pending"},
		{ID: "3", Kind: models.KindOrder, Status: "pending"},
	}

	// writes that land while the snapshot is in flight
	c.Put(&models.Record{ID: "1", Kind: models.KindOrder, Status: "cancelled"})
	c.Delete(models.KindOrder, "2")
	c.Put(&models.Record{ID: "3", Kind: models.KindOrder, Status: "confirmed"})

	c.Replace(snapshot, since)

	_, ok := c.Get(models.KindOrder, "1")
	assert.False(t, ok, "terminal record must not come back")
	_, ok = c.Get(models.KindOrder, "2")
	assert.False(t, ok, "deleted record must not come back")
	got, ok := c.Get(models.KindOrder, "3")
	assert.True(t, ok)
	assert.Equal(t, models.Status("confirmed"), got.Status)

	// the next snapshot is authoritative again
	c.Replace([]*models.Record{{ID: "2", Kind: models.KindOrder, Status: "pending"}}, c.Generation())
	_, ok = c.Get(models.KindOrder, "2")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestRefreshDuringWrite(t *testing.T) {
	c := NewActiveRecordsCache()
	c.Put(&models.Record{ID: "1", Kind: models.KindOrder, Status: "pending"})

	load := func(context.Context) ([]*models.Record, error) {
		snapshot := []*models.Record{{ID: "1", Kind: models.KindOrder, Status: "pending"}}
		c.Delete(models.KindOrder, "1")
		return snapshot, nil
	}
	assert.NoError(t, c.Refresh(context.Background(), load))
	_, ok := c.Get(models.KindOrder, "1")
	assert.False(t, ok)
}
