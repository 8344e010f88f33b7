// Command imagery renders placeholder product images from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
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

// app carries the state shared by every subcommand once the root command
// has loaded configuration.
type app struct {
	configPath string
	remote     bool
	verbose    bool

	cfg     *config.Config
	logger  *zap.Logger
	synth   batch.Synthesizer
	catalog func(ctx context.Context) ([]imaging.CategoryInfo, error)
	store   *artifacts.Store
	closers []func() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd(&app{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "imagery",
		Short: "Generate placeholder storefront images",
		Long: `Generate procedural placeholder images for Sarees, Lehengas, Kurtis and Jewelry.

Images are rendered in-process unless --remote is set, in which case the
synthesizer gRPC service at synthesizer_addr does the work.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", os.Getenv("IMAGERY_CONFIG"), "YAML config file")
	root.PersistentFlags().BoolVar(&a.remote, "remote", false, "Render through the synthesizer gRPC service")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newGenerateCmd(a), newBatchCmd(a), newCategoriesCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	a.cfg = cfg

	logger, logFile, err := logging.SetupLevel("imagery", cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	a.logger = logger
	a.closers = append(a.closers, func() error { _ = logger.Sync(); return logFile.Close() })
	a.store = artifacts.NewStore(cfg.ArtifactsRoot)

	if a.remote {
		conn, err := grpc.NewClient(cfg.SynthesizerAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("dial synthesizer %s: %w", cfg.SynthesizerAddr, err)
		}
		a.closers = append(a.closers, conn.Close)
		client := imageryv1.NewClient(conn)
		a.synth = client
		a.catalog = client.ListCategories
		return nil
	}

	a.synth = imaging.New(imaging.WithLogger(logger.Named("imaging")))
	a.catalog = func(context.Context) ([]imaging.CategoryInfo, error) { return imaging.Describe(), nil }
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
