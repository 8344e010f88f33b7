package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"storefront-imagery/internal/config"
	"storefront-imagery/internal/imaging"
	"storefront-imagery/internal/logging"
	"storefront-imagery/internal/rpc/imageryv1"
)

func main() {
	configPath := flag.String("config", os.Getenv("IMAGERY_CONFIG"), "YAML config file")
	addr := flag.String("addr", "", "gRPC listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *addr == "" {
		*addr = cfg.SynthesizerAddr
	}

	logger, logFile, err := logging.SetupLevel("synthesizer", cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}
	defer logFile.Close()
	defer logger.Sync()

	listener, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Fatal("listen failed", zap.String("addr", *addr), zap.Error(err))
	}

	synth := imaging.New(imaging.WithLogger(logger.Named("imaging")))

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(imageryv1.UnaryLogger(logger)))
	imageryv1.RegisterSynthesizerServer(server, imageryv1.NewServer(synth, logger))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(imageryv1.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		healthServer.Shutdown()
		server.GracefulStop()
	}()

	logger.Info("synthesizer gRPC listening", zap.String("addr", *addr))
	if err := server.Serve(listener); err != nil {
		logger.Fatal("synthesizer gRPC stopped", zap.Error(err))
	}
}
