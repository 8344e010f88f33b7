package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"storefront-imagery/internal/artifacts"
	"storefront-imagery/internal/batch"
	"storefront-imagery/internal/config"
	"storefront-imagery/internal/imaging"
	"storefront-imagery/internal/logging"
	"storefront-imagery/internal/rpc/imageryv1"
)

func main() {
	configPath := flag.String("config", os.Getenv("IMAGERY_CONFIG"), "YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	remote := flag.Bool("remote", envBoolOrDefault("SYNTHESIZER_REMOTE", false), "render through the synthesizer gRPC service instead of in-process")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *addr == "" {
		*addr = cfg.GatewayAddr
	}

	logger, logFile, err := logging.SetupLevel("gateway", cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}
	defer logFile.Close()
	defer logger.Sync()

	var (
		synth   batch.Synthesizer
		catalog categoryLister
	)
	if *remote {
		conn, err := grpc.NewClient(cfg.SynthesizerAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			logger.Fatal("failed to dial synthesizer", zap.String("addr", cfg.SynthesizerAddr), zap.Error(err))
		}
		defer conn.Close()
		client := imageryv1.NewClient(conn)
		synth, catalog = client, client
	} else {
		synth, catalog = imaging.New(imaging.WithLogger(logger.Named("imaging"))), localCatalog{}
	}

	store := artifacts.NewStore(cfg.ArtifactsRoot)
	g := newGateway(synth, catalog, store, cfg, logger)

	logger.Info("gateway listening",
		zap.String("addr", *addr),
		zap.Bool("remote", *remote),
		zap.String("synthesizer", cfg.SynthesizerAddr),
		zap.String("artifacts", cfg.ArtifactsRoot))

	server := &http.Server{
		Addr:              *addr,
		Handler:           g.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("gateway stopped", zap.Error(err))
	}
}

type localCatalog struct{}

func (localCatalog) ListCategories(context.Context) ([]imaging.CategoryInfo, error) {
	return imaging.Describe(), nil
}

func envBoolOrDefault(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
