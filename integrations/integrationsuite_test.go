package integrations

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama/mocks"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"bizflow/internal/audit"
	"bizflow/internal/cache"
	"bizflow/internal/client"
	"bizflow/internal/db"
	"bizflow/internal/events"
	"bizflow/internal/kafka"
	"bizflow/internal/middleware"
	taskprocessor "bizflow/internal/processor"
	"bizflow/internal/repository"
	"bizflow/internal/server"
	"bizflow/internal/service"
	"bizflow/internal/ws"
)

const (
	testUsername = "integration"
	testPassword = "integration-pass"
	testTopic    = "status-transitions"
)

// IntegrationSuite runs the ledger against the postgres database named by
// TEST_DSN, wiring the audit pool, the outbox and the websocket hub.
type IntegrationSuite struct {
	suite.Suite

	db          *sql.DB
	testServer  *httptest.Server
	client      *client.Client
	hub         *ws.Hub
	producer    *mocks.SyncProducer
	tasks       *taskprocessor.TaskProcessor
	auditPool   *audit.AuditWorkerPool
	auditCancel context.CancelFunc

	mu        sync.Mutex
	published [][]byte
}

func (suite *IntegrationSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DSN")
	if dsn == "" {
		suite.T().Skip("TEST_DSN not set")
	}

	var err error
	suite.db, err = db.NewDB(db.DriverPostgres, dsn)
	suite.Require().NoError(err)

	for _, table := range []string{"transitions", "activities", "records", "menu_items", "tasks", "audit_logs"} {
		_, err := suite.db.Exec("TRUNCATE " + table + " CASCADE")
		suite.Require().NoError(err)
	}

	logger := zap.NewNop()
	var auditCtx context.Context
	auditCtx, suite.auditCancel = context.WithCancel(context.Background())
	suite.auditPool = audit.NewAuditWorkerPool(audit.AuditPoolConfig{BatchSize: 1, Timeout: 50 * time.Millisecond, ChannelSize: 16},
		logger, audit.NewDBProcessor(suite.db))
	suite.auditPool.Start(auditCtx, 1)

	suite.producer = mocks.NewSyncProducer(suite.T(), nil)
	suite.tasks = taskprocessor.NewTaskProcessor(repository.NewSQLTaskRepository(suite.db),
		kafka.NewProducer(suite.producer, logger), testTopic, events.FormatJSON, time.Second, 10, logger)

	suite.hub = ws.NewHub(logger)
	records := service.NewRecordService(
		repository.NewRecordRepository(suite.db),
		repository.NewActivityRepository(suite.db),
		cache.NewActiveRecordsCache(),
		suite.auditPool,
		logger,
		service.Options{Notify: suite.hub.Broadcast, Outbox: true},
	)
	srv := server.NewServer(server.Deps{
		Records:   records,
		Menu:      service.NewMenuService(repository.NewMenuRepository(suite.db)),
		Live:      suite.hub,
		AuditPool: suite.auditPool,
		Logger:    logger,
	}, middleware.Credentials{User: testUsername, Password: testPassword}, ":0")

	suite.testServer = httptest.NewServer(srv.Handler())
	suite.client = client.New(suite.testServer.URL,
		client.WithSession(client.BasicAuth{User: testUsername, Password: testPassword}))
}

func (suite *IntegrationSuite) TearDownSuite() {
	if suite.testServer != nil {
		suite.testServer.Close()
	}
	if suite.auditPool != nil {
		suite.auditPool.Shutdown(suite.auditCancel)
	}
	if suite.db != nil {
		_ = suite.db.Close()
	}
}

func (suite *IntegrationSuite) expectPublish() {
	suite.producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		suite.mu.Lock()
		suite.published = append(suite.published, val)
		suite.mu.Unlock()
		return nil
	})
}

func (suite *IntegrationSuite) dialLive(kind string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(suite.testServer.URL, "http") + "/ws/activities?kind=" + kind
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	suite.Require().NoError(err)
	suite.Require().Equal(http.StatusSwitchingProtocols, resp.StatusCode)
	return conn
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}
