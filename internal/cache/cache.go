package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"bizflow/internal/models"
	"bizflow/internal/vocabulary"
)

type key struct {
	kind models.Kind
	id   string
}

// ActiveRecordsCache keeps records that are not yet in a terminal status.
// Every Put and Delete bumps the generation so a refresh loaded from an
// older snapshot cannot overwrite newer writes.
type ActiveRecordsCache struct {
	mu      sync.RWMutex
	records map[key]*models.Record
	gen     uint64
	touched map[key]uint64
}

func NewActiveRecordsCache() *ActiveRecordsCache {
	return &ActiveRecordsCache{
		records: make(map[key]*models.Record),
		touched: make(map[key]uint64),
	}
}

func (c *ActiveRecordsCache) Get(kind models.Kind, id string) (*models.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.records[key{kind, id}]
	if !ok {
		return nil, false
	}
	cp := *r
	return &cp, true
}

// Put stores r, or evicts it once it reaches a terminal status.
func (c *ActiveRecordsCache) Put(r *models.Record) {
	k := key{r.Kind, r.ID}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch(k)
	if vocabulary.IsTerminal(r.Kind, r.Status) {
		delete(c.records, k)
		return
	}
	cp := *r
	c.records[k] = &cp
}

func (c *ActiveRecordsCache) Delete(kind models.Kind, id string) {
	k := key{kind, id}
	c.mu.Lock()
	c.touch(k)
	delete(c.records, k)
	c.mu.Unlock()
}

// touch must be called with mu held.
func (c *ActiveRecordsCache) touch(k key) {
	c.gen++
	c.touched[k] = c.gen
}

// Generation returns the write counter. Take it before loading a snapshot
// and hand it to Replace.
func (c *ActiveRecordsCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

func (c *ActiveRecordsCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Replace swaps the content for a snapshot taken at generation since,
// keeping only active records. Keys written after since keep their current
// state, including deletions.
func (c *ActiveRecordsCache) Replace(records []*models.Record, since uint64) {
	next := make(map[key]*models.Record, len(records))
	for _, r := range records {
		if vocabulary.IsTerminal(r.Kind, r.Status) {
			continue
		}
		cp := *r
		next[key{r.Kind, r.ID}] = &cp
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, g := range c.touched {
		if g <= since {
			continue
		}
		if cur, ok := c.records[k]; ok {
			next[k] = cur
		} else {
			delete(next, k)
		}
	}
	c.records = next
	c.touched = make(map[key]uint64)
}

type Loader func(ctx context.Context) ([]*models.Record, error)

// Refresh loads a snapshot and replaces the content with it.
func (c *ActiveRecordsCache) Refresh(ctx context.Context, load Loader) error {
	since := c.Generation()
	records, err := load(ctx)
	if err != nil {
		return err
	}
	c.Replace(records, since)
	return nil
}

func (c *ActiveRecordsCache) StartAutoRefresh(ctx context.Context, load Loader, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.Refresh(ctx, load); err != nil {
				logger.Warn("refresh active records", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
