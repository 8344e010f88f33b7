package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront-imagery/internal/artifacts"
	"storefront-imagery/internal/batch"
	"storefront-imagery/internal/imaging"
)

type generateFlags struct {
	name     string
	category string
	width    int
	height   int
	quality  int
	format   string
	seed     int64
	kind     string
	out      string
}

func newGenerateCmd(a *app) *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render one placeholder image",
		Long: `Render one placeholder image and write it to the artifacts store, or to
--out when given. Unknown categories render with the Sarees template.`,
		Example: `  imagery generate --category Jewelry --name "Kundan Necklace Set"
  imagery generate --category Kurtis --width 400 --height 600 --format png --out kurti.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runGenerate(cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "Product name recorded with the image")
	cmd.Flags().StringVar(&f.category, "category", "", "Product category (Sarees, Lehengas, Kurtis, Jewelry)")
	cmd.Flags().IntVar(&f.width, "width", 0, "Output width (default from config)")
	cmd.Flags().IntVar(&f.height, "height", 0, "Output height (default from config)")
	cmd.Flags().IntVar(&f.quality, "quality", 0, "JPEG quality 1-100 (default from config)")
	cmd.Flags().StringVar(&f.format, "format", "", "Output format: jpeg or png (default from config)")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Random seed; 0 picks one")
	cmd.Flags().StringVar(&f.kind, "kind", string(artifacts.Products), "Artifact kind directory")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Write to this path instead of the artifacts store")
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, f generateFlags) error {
	format, err := imaging.ParseFormat(firstNonEmpty(f.format, a.cfg.Output.Format))
	if err != nil {
		return err
	}
	req := imaging.Request{
		ProductName: f.name,
		Category:    f.category,
		Width:       firstPositive(f.width, a.cfg.Output.Width),
		Height:      firstPositive(f.height, a.cfg.Output.Height),
		Quality:     firstPositive(f.quality, a.cfg.Output.Quality),
		Format:      format,
		Seed:        f.seed,
	}

	var kind artifacts.Kind
	if f.out == "" {
		if kind, err = artifacts.ParseKind(f.kind); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	artifact, err := a.synth.Synthesize(ctx, req)
	if err != nil {
		return err
	}

	var path string
	if f.out != "" {
		if err := os.MkdirAll(filepath.Dir(f.out), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(f.out, artifact.Data, 0o644); err != nil {
			return err
		}
		path = f.out
	} else if path, err = a.store.Save(kind, artifact.Filename, artifact.Data); err != nil {
		return err
	}

	a.logger.Info("generated",
		zap.String("path", path),
		zap.String("category", artifact.Category),
		zap.String("color", artifact.Color),
		zap.Int64("seed", artifact.Seed))
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %s, %dx%d)\n", path, artifact.Template, artifact.Color, artifact.Width, artifact.Height)
	return nil
}

type batchFlags struct {
	products string
	kind     string
	delay    time.Duration
}

func newBatchCmd(a *app) *cobra.Command {
	var f batchFlags
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Render a product list into the artifacts store",
		Long: `Render every product of a list, pausing --delay between items. The list
comes from --products (a JSON array of {"name","category"} objects or
[name, category] pairs) or from the config file. A product that fails is
skipped; the command fails only when nothing was generated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBatch(cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.products, "products", "p", "", "JSON product list file")
	cmd.Flags().StringVar(&f.kind, "kind", "", "Artifact kind directory (default from config)")
	cmd.Flags().DurationVar(&f.delay, "delay", -1, "Pause between products (default from config)")
	return cmd
}

func (a *app) runBatch(cmd *cobra.Command, f batchFlags) error {
	items := batch.FromProducts(a.cfg.Batch.Products)
	if f.products != "" {
		payload, err := os.ReadFile(f.products)
		if err != nil {
			return err
		}
		if items, err = batch.ParseItems(payload); err != nil {
			return err
		}
	}
	delay := time.Duration(a.cfg.Batch.Delay)
	if f.delay >= 0 {
		delay = f.delay
	}
	format, err := imaging.ParseFormat(a.cfg.Output.Format)
	if err != nil {
		return err
	}

	runner := batch.NewRunner(a.synth, a.store, a.logger.Named("batch"), time.Minute)
	job, err := runner.Run(cmd.Context(), batch.Batch{
		Kind:    artifacts.Kind(firstNonEmpty(f.kind, a.cfg.Batch.Kind)),
		Items:   items,
		Delay:   delay,
		Width:   a.cfg.Output.Width,
		Height:  a.cfg.Output.Height,
		Quality: a.cfg.Output.Quality,
		Format:  format,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tCATEGORY\tSTATE\tRESULT")
	for _, item := range job.Items {
		result := item.Path
		if item.Error != "" {
			result = item.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", item.ProductName, item.Category, item.State, result)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", job.State, job.Message)

	if job.State != batch.StateCompleted {
		return fmt.Errorf("batch %s: %s", job.State, job.Message)
	}
	return nil
}

func newCategoriesCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List supported categories and their palettes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			infos, err := a.catalog(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tBACKGROUND\tCOLORS\tPATTERNS")
			for _, info := range infos {
				name := info.Name
				if info.Default {
					name += " (default)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, info.Background, strings.Join(info.Colors, ", "), strings.Join(info.Patterns, ", "))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
