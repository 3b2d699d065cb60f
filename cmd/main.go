package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/auctionroom/auctionroom/internal/auction/application"
	adminhttp "github.com/auctionroom/auctionroom/internal/auction/infra/http"
	"github.com/auctionroom/auctionroom/internal/auction/infra/repository/postgres"
	auctionws "github.com/auctionroom/auctionroom/internal/auction/infra/websocket"
	"github.com/auctionroom/auctionroom/internal/shared/db"
	"github.com/auctionroom/auctionroom/internal/shared/db/migrations"
	"github.com/auctionroom/auctionroom/internal/shared/httpserver"
	"github.com/auctionroom/auctionroom/internal/shared/logger"
	"github.com/auctionroom/auctionroom/internal/shared/scheduler"
	sharedws "github.com/auctionroom/auctionroom/internal/shared/websocket"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := migrations.RunMigrations(); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := db.NewPostgresPool(ctx)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	auctionRepo := postgres.NewAuctionRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	bidRepo := postgres.NewBidRepository(pool)
	participantRepo := postgres.NewParticipantRepository(pool)
	vendorRepo := postgres.NewVendorRepository(pool)

	hub := sharedws.NewHub()
	go hub.Run(ctx)

	broadcaster := auctionws.NewAuctionBroadcaster(hub)

	lifecycle := application.NewLifecycleService(auctionRepo, broadcaster)
	placeBidUC := application.NewPlaceBidUseCase(lifecycle, lotRepo, broadcaster)
	stateUC := application.NewAuctionStateUseCase(lotRepo, participantRepo)
	auctionService := application.NewAuctionService(placeBidUC, stateUC)
	adminService := application.NewAdminService(auctionRepo, lotRepo, participantRepo, vendorRepo, bidRepo)

	sched := scheduler.New(lifecycle.Activate)
	defer sched.Stop()
	if _, err := application.ReschedulePendingActivations(ctx, auctionRepo, sched); err != nil {
		log.Fatal("re-arming scheduled activations failed", zap.Error(err))
	}

	server := httpserver.NewServer()

	wsHandler := auctionws.NewAuctionWSHandler(ctx, auctionService, auctionRepo, participantRepo, hub)
	wsHandler.Register(server.App())
	go wsHandler.ListenForMessages(ctx)

	adminHandler := adminhttp.NewAdminHandler(adminService, lifecycle, auctionRepo, sched)
	adminHandler.Register(server.App())

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr))
		errCh <- server.Start(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped", zap.Error(err))
		}
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
