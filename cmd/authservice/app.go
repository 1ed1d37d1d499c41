package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/eliyaaki/auth-service/internal/db"
	"github.com/eliyaaki/auth-service/internal/handlers"
	"github.com/eliyaaki/auth-service/internal/logger"
	"github.com/eliyaaki/auth-service/internal/mailer"
	"github.com/eliyaaki/auth-service/internal/repository/postgres"
	"github.com/eliyaaki/auth-service/internal/service/auth"
	"github.com/eliyaaki/auth-service/internal/service/token"
	"github.com/eliyaaki/auth-service/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	mail *mailer.Dispatcher
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	codec, err := token.New(token.Config{
		AccessPrivateKey:  c.AccessTokenPrivateKey,
		AccessPublicKey:   c.AccessTokenPublicKey,
		RefreshPrivateKey: c.RefreshTokenPrivateKey,
		RefreshPublicKey:  c.RefreshTokenPublicKey,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token codec. Err: %w", err)
	}

	dispatcher := mailer.NewDispatcher(mailer.NewSMTP(mailer.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUsername,
		Password: c.SMTPPassword,
		From:     c.SMTPFrom,
	}), logger)

	authService, err := auth.NewService(auth.Config{}, codec, storage.User(), storage.Session())
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	userService, err := user.NewService(user.Config{BaseURL: c.BaseURL}, storage, dispatcher)
	if err != nil {
		return nil, fmt.Errorf("error while creating user service. Err: %w", err)
	}

	mux := handlers.NewRouter(authService, userService, logger)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		mail:       dispatcher,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	// Mail worker lives as long as the server does and drains its
	// queue before the process exits
	mailStopped := s.mail.Run(srvCtx)

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server")
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	<-mailStopped

	return err
}
