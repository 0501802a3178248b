package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/BrandonDHaskell/campusgate/internal/auth"
	"github.com/BrandonDHaskell/campusgate/internal/campus/dedup"
	"github.com/BrandonDHaskell/campusgate/internal/campus/service"
	"github.com/BrandonDHaskell/campusgate/internal/campus/store/sqlite"
	"github.com/BrandonDHaskell/campusgate/internal/db"
	"github.com/BrandonDHaskell/campusgate/internal/grpcapi"
	"github.com/BrandonDHaskell/campusgate/internal/httpapi"
	"github.com/BrandonDHaskell/campusgate/internal/mq"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the HTTP API (and the gRPC station service when configured)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(ctx context.Context) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	sqlDB, err := db.Open(ctx, db.Config{Path: cfg.DB.Path, Env: cfg.Env})
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer sqlDB.Close()

	if cfg.DB.SeedDev && cfg.Env == "dev" {
		if err := db.SeedDev(ctx, sqlDB); err != nil {
			return fmt.Errorf("seed dev users: %w", err)
		}
		log.Info().Msg("dev users seeded")
	}

	writer := db.NewWorker(sqlDB)
	defer writer.Close()

	users := sqlite.NewUserStore(sqlDB, writer)
	events := sqlite.NewAccessEventStore(sqlDB, writer)

	guard, stopGuard, err := newDedupGuard(ctx)
	if err != nil {
		return err
	}
	defer stopGuard()

	var publisher service.Publisher
	if cfg.RabbitMQ.URL != "" {
		client, err := mq.NewRabbitMQClient(mq.RabbitMQConfig{
			URL:          cfg.RabbitMQ.URL,
			QueueDurable: cfg.RabbitMQ.QueueDurable,
		})
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		q := mq.New(client)
		defer q.Close()
		publisher = q
		log.Info().Str("queue", cfg.RabbitMQ.Queue).Msg("publishing access events")
	}

	userSvc := service.NewUserService(users, log)
	accessSvc := service.NewAccessService(users, events, service.AccessOptions{
		Guard:     guard,
		Publisher: publisher,
		Channel:   cfg.RabbitMQ.Queue,
		Logger:    log,
	})
	historySvc := service.NewHistoryService(events)
	tokens := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:         log,
		Addr:           cfg.HTTP.Addr,
		UserService:    userSvc,
		AccessService:  accessSvc,
		HistoryService: historySvc,
		Tokens:         tokens,
		EnforceAuth:    cfg.Auth.Enforce,
		Ready:          sqlDB.PingContext,
	})

	errc := make(chan error, 2)

	var grpcSrv *grpc.Server
	if cfg.GRPC.Addr != "" {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		grpcSrv = grpcapi.NewServer(grpcapi.Dependencies{
			Logger:        log,
			UserService:   userSvc,
			AccessService: accessSvc,
			Tokens:        tokens,
			EnforceAuth:   cfg.Auth.Enforce,
		}).NewGRPCServer()

		go func() {
			log.Info().Str("addr", cfg.GRPC.Addr).Msg("grpc listening")
			if err := grpcSrv.Serve(lis); err != nil {
				errc <- fmt.Errorf("grpc: %w", err)
			}
		}()
	}

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Bool("auth_enforced", cfg.Auth.Enforce).Msg("http listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case runErr = <-errc:
		log.Error().Err(runErr).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	return runErr
}

// newDedupGuard picks Redis when configured, otherwise an in-process guard
// with a background sweeper. A zero window disables the guard.
func newDedupGuard(ctx context.Context) (dedup.Guard, func(), error) {
	window := cfg.Dedup.Window
	if window == 0 {
		log.Warn().Msg("duplicate scan guard disabled")
		return dedup.Nop{}, func() {}, nil
	}

	if cfg.Dedup.RedisAddr != "" {
		client, err := dedup.ConnectRedis(ctx, dedup.RedisConfig{Addr: cfg.Dedup.RedisAddr, DB: cfg.Dedup.RedisDB})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", cfg.Dedup.RedisAddr).Dur("window", window).Msg("redis dedup guard")
		return dedup.NewRedisGuard(client, window), func() { _ = client.Close() }, nil
	}

	g := dedup.NewMemoryGuard(window)
	sweeper := service.NewDedupSweeper(g, cfg.Dedup.SweepInterval, log)
	sweeper.Start(ctx)
	return g, sweeper.Stop, nil
}
