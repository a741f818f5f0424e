package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"bizflow/internal/db"
)

type collectProcessor struct {
	mu      sync.Mutex
	batches [][]AuditLog
}

func (c *collectProcessor) Process(_ context.Context, batch []AuditLog) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]AuditLog, len(batch))
	copy(cp, batch)
	c.batches = append(c.batches, cp)
	return nil
}

func (c *collectProcessor) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, b := range c.batches {
		n += len(b)
	}
	return n
}

func TestPoolFlushesBySize(t *testing.T) {
	proc := &collectProcessor{}
	pool := NewAuditWorkerPool(AuditPoolConfig{BatchSize: 2, Timeout: time.Hour, ChannelSize: 10}, zap.NewNop(), proc)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx, 1)

	pool.Log(AuditLog{RecordID: "1"})
	pool.Log(AuditLog{RecordID: "2"})

	assert.Eventually(t, func() bool { return proc.total() == 2 }, time.Second, 10*time.Millisecond)
	pool.Shutdown(cancel)
}

func TestPoolFlushesByTimeout(t *testing.T) {
	proc := &collectProcessor{}
	pool := NewAuditWorkerPool(AuditPoolConfig{BatchSize: 100, Timeout: 20 * time.Millisecond, ChannelSize: 10}, zap.NewNop(), proc)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx, 1)

	pool.Log(AuditLog{RecordID: "1"})

	assert.Eventually(t, func() bool { return proc.total() == 1 }, time.Second, 10*time.Millisecond)
	pool.Shutdown(cancel)
}

func TestPoolFlushesOnShutdown(t *testing.T) {
	proc := &collectProcessor{}
	pool := NewAuditWorkerPool(AuditPoolConfig{BatchSize: 100, Timeout: time.Hour, ChannelSize: 10}, zap.NewNop(), proc)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx, 1)

	pool.Log(AuditLog{RecordID: "1"})
	pool.Log(AuditLog{RecordID: "2"})
	pool.Shutdown(cancel)

	assert.Equal(t, 2, proc.total())
}

func TestLogDropsWhenFull(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	pool := NewAuditWorkerPool(AuditPoolConfig{BatchSize: 1, Timeout: time.Second, ChannelSize: 1}, zap.New(core))

	pool.Log(AuditLog{RecordID: "1"})
	pool.Log(AuditLog{RecordID: "2"})

	assert.Equal(t, 1, logs.FilterMessage("audit log channel full, dropping log").Len())
}

func TestLogProcessorFilter(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := &LogProcessor{Logger: zap.New(core), Filter: "cancel"}

	require.NoError(t, p.Process(context.Background(), []AuditLog{
		{RecordID: "1", Message: "Order Cancelled"},
		{RecordID: "2", Message: "Order Shipped"},
	}))
	assert.Equal(t, 1, logs.Len())
}

func TestDBProcessor(t *testing.T) {
	conn, err := db.NewDB(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	p := NewDBProcessor(conn)
	require.NoError(t, p.Process(context.Background(), []AuditLog{
		{Timestamp: time.Now().UTC(), RecordID: "1", Kind: "order", OldState: "pending", NewState: "confirmed"},
		{Timestamp: time.Now().UTC(), RecordID: "2", Kind: "order", OldState: "pending", NewState: "cancelled"},
	}))

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM audit_logs`).Scan(&n))
	assert.Equal(t, 2, n)
}
