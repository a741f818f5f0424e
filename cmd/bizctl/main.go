package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"bizflow/internal/client"
	"bizflow/internal/config"
	"bizflow/internal/handler"
	"bizflow/internal/logger"
)

func main() {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewConsole()
	defer func() { _ = log.Sync() }()

	h := handler.New(newClient(cfg, log), os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// one-shot mode: bizctl show order 42
	if len(os.Args) > 1 {
		if err := h.Execute(ctx, os.Args[1], os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
			os.Exit(1)
		}
		return
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("\n> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" {
			return
		}
		parts := strings.Fields(line)
		if err := h.Execute(ctx, parts[0], parts[1:]); err != nil {
			fmt.Printf("%s: %v\n", parts[0], err)
		}
	}
}

func newClient(cfg *config.ClientConfig, log *zap.Logger) *client.Client {
	opts := []client.Option{
		client.WithLogger(log),
		client.WithNotifier(client.NotifierFunc(func(err error) {
			fmt.Fprintf(os.Stderr, "! %v\n", err)
		})),
	}
	switch {
	case cfg.Token != "":
		token := cfg.Token
		opts = append(opts, client.WithSession(client.BearerToken(func() string { return token })))
	case cfg.Username != "":
		opts = append(opts, client.WithSession(client.BasicAuth{User: cfg.Username, Password: cfg.Password}))
	}
	return client.New(cfg.BaseURL, append(opts, client.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))...)
}
