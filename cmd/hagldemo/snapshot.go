package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sagostin/hagl-demo/pkg/config"
	"github.com/sagostin/hagl-demo/pkg/demo"
	"github.com/sagostin/hagl-demo/pkg/panel"
)

var (
	snapCfg   = config.Default()
	snapOut   string
	snapCount int
)

func init() {
	rootCmd.AddCommand(snapshotCmd)

	f := snapshotCmd.Flags()
	f.StringVarP(&snapOut, `out`, `o`, `.`, `output directory`)
	f.IntVarP(&snapCount, `count`, `n`, 200, `primitives drawn per demo`)
	f.IntVar(&snapCfg.Width, `width`, snapCfg.Width, `image width in pixels`)
	f.IntVar(&snapCfg.Height, `height`, snapCfg.Height, `image height in pixels`)
	f.StringVar(&snapCfg.Renderer, `renderer`, snapCfg.Renderer, `renderer (hagl, vector)`)
	f.Uint64Var(&snapCfg.Seed, `seed`, 1, `random seed`)
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [demo...]",
	Short: "save demo snapshots",
	Long:  "render every demo, or the named ones, on a memory panel and save one BMP file each",
	Run: func(cmd *cobra.Command, args []string) {
		run(func() error {
			logger, closeLog, err := newLogger(false)
			if err != nil {
				return err
			}
			defer closeLog()

			kinds := demo.All()
			if len(args) > 0 {
				kinds = kinds[:0]
				for _, name := range args {
					k, err := demo.Parse(name)
					if err != nil {
						return err
					}
					kinds = append(kinds, k)
				}
			}
			return saveSnapshots(cmd.Context(), snapCfg, kinds, snapOut, snapCount, logger)
		})
	},
}

// snapshotName is the file name of the snapshot of one demo.
func snapshotName(k demo.Kind) string {
	return fmt.Sprintf("%02d-%s.bmp", int(k), strings.ReplaceAll(strings.ToLower(k.String()), " ", "-"))
}

// saveSnapshots renders each demo n times on its own memory panel and writes
// the result into dir.
func saveSnapshots(ctx context.Context, cfg config.Config, kinds []demo.Kind, dir string, n int, logger *slog.Logger) error {
	cfg.Panel = config.PanelMemory
	cfg.Backend = config.BackendFramebuffer
	if err := cfg.Validate(); err != nil {
		return err
	}
	if n < 1 {
		return errors.Errorf("count must be at least 1, got %d", n)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapPrefix(err, "failed to create output directory", 0)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Cores)
	for _, k := range kinds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mem := panel.NewMemory(cfg.Width, cfg.Height)
			display, err := openDisplay(cfg, mem)
			if err != nil {
				return err
			}
			defer display.Close()

			rng := rand.New(rand.NewPCG(cfg.Seed, uint64(k)))
			for i := 0; i < n; i++ {
				demo.Render(k, display, rng)
			}
			if _, err := display.Flush(); err != nil {
				return errors.WrapPrefix(err, k.String(), 0)
			}

			path := filepath.Join(dir, snapshotName(k))
			if err := mem.SaveBMP(path); err != nil {
				return err
			}
			logger.Info("snapshot saved", "demo", k.String(), "path", path)
			return nil
		})
	}
	return g.Wait()
}
