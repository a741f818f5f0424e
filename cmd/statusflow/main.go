package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"bizflow/internal/audit"
	"bizflow/internal/cache"
	"bizflow/internal/config"
	"bizflow/internal/db"
	"bizflow/internal/events"
	"bizflow/internal/kafka"
	"bizflow/internal/logger"
	"bizflow/internal/middleware"
	taskprocessor "bizflow/internal/processor"
	"bizflow/internal/repository"
	"bizflow/internal/server"
	"bizflow/internal/service"
	"bizflow/internal/ws"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		log = logger.NewConsole()
		log.Warn("falling back to console logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("statusflow stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	format, err := events.ParseFormat(cfg.EventFormat)
	if err != nil {
		return err
	}

	database, err := db.NewDB(cfg.DBDriver, cfg.DSN)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	var wg sync.WaitGroup

	auditCtx, auditCancel := context.WithCancel(context.Background())
	auditPool := audit.NewAuditWorkerPool(audit.AuditPoolConfig{
		BatchSize:   cfg.AuditBatchSize,
		Timeout:     cfg.AuditTimeout,
		ChannelSize: cfg.AuditBatchSize * 4,
	}, log,
		audit.NewDBProcessor(database),
		&audit.LogProcessor{Logger: log, Filter: cfg.FilterWord},
	)
	auditPool.Start(auditCtx, cfg.AuditWorkers)
	defer auditPool.Shutdown(auditCancel)

	hub := ws.NewHub(log)
	records := repository.NewRecordRepository(database)
	active := cache.NewActiveRecordsCache()

	opts := service.Options{Strict: cfg.StrictTransitions}
	if len(cfg.KafkaBrokers) == 0 {
		opts.Notify = hub.Broadcast
	} else {
		opts.Outbox = true
		producer, err := kafka.NewSaramaProducer(cfg.KafkaBrokers, log)
		if err != nil {
			return err
		}
		defer producer.Close()

		tasks := taskprocessor.NewTaskProcessor(repository.NewSQLTaskRepository(database), producer,
			cfg.KafkaTopic, format, cfg.OutboxPollInterval, cfg.OutboxBatchLimit, log)
		wg.Add(2)
		go func() {
			defer wg.Done()
			tasks.Start(ctx)
		}()
		go func() {
			defer wg.Done()
			relay := kafka.NewConsumerGroupHandler(func(_ context.Context, value []byte) error {
				evt, err := events.Decode(value, format)
				if err != nil {
					return err
				}
				hub.Broadcast(evt)
				return nil
			}, log)
			if err := kafka.StartSaramaConsumer(ctx, cfg.KafkaBrokers, cfg.KafkaGroupID,
				[]string{cfg.KafkaTopic}, relay, log); err != nil {
				log.Error("event relay stopped", zap.Error(err))
			}
		}()
	}

	recordService := service.NewRecordService(records, repository.NewActivityRepository(database),
		active, auditPool, log, opts)

	if err := active.Refresh(ctx, recordService.LoadActive); err != nil {
		log.Warn("warm active records", zap.Error(err))
	} else {
		log.Info("active records cached", zap.Int("count", active.Len()))
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		active.StartAutoRefresh(ctx, recordService.LoadActive, cfg.CacheRefreshEvery, log)
	}()

	health := server.NewHealthServer(database, log)
	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		return err
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		health.Watch(ctx, 10*time.Second)
	}()
	go func() {
		defer wg.Done()
		if err := health.Serve(lis); err != nil {
			log.Error("grpc health server", zap.Error(err))
		}
	}()

	srv := server.NewServer(server.Deps{
		Records:   recordService,
		Menu:      service.NewMenuService(repository.NewMenuRepository(database)),
		Live:      hub,
		AuditPool: auditPool,
		Logger:    log,
	}, middleware.Credentials{
		User:         cfg.Username,
		Password:     cfg.Password,
		PasswordHash: cfg.PasswordHash,
	}, cfg.Addr())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && !errors.Is(shutdownErr, context.DeadlineExceeded) {
		log.Warn("http shutdown", zap.Error(shutdownErr))
	}
	health.Stop()
	stop()
	wg.Wait()
	return err
}
