package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"pagebind/internal/convert"
	"pagebind/internal/history"
	"pagebind/internal/logging"
)

func newConvertCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		outputFlag    string
		grayscaleFlag bool
		resizeFlag    string
		orderFlag     string
		speedFlag     string
		workersFlag   int
	)

	cmd := &cobra.Command{
		Use:   "convert <archive> [archive...]",
		Short: "Convert comic archives into PDF documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if outputFlag != "" && len(args) > 1 {
				return errors.New("--output requires a single archive")
			}

			applyOverride := func(name string, apply func()) {
				if cmd.Flags().Changed(name) {
					apply()
				}
			}
			applyOverride("grayscale", func() { cfg.Conversion.Grayscale = grayscaleFlag })
			applyOverride("resize", func() { cfg.Conversion.Resize = strings.ToUpper(strings.TrimSpace(resizeFlag)) })
			applyOverride("order", func() { cfg.Conversion.MergeOrder = strings.ToLower(strings.TrimSpace(orderFlag)) })
			applyOverride("speed", func() { cfg.Conversion.Speed = strings.ToLower(strings.TrimSpace(speedFlag)) })
			applyOverride("workers", func() { cfg.Conversion.Workers = workersFlag })
			if err := cfg.Validate(); err != nil {
				return err
			}

			// One conversion run at a time; concurrent runs would race on
			// the scratch space and thrash the disk.
			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "pagebind.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire conversion lock: %w", err)
			}
			if !locked {
				return errors.New("another pagebind conversion is already running")
			}
			defer func() { _ = lock.Unlock() }()

			logger, err := newLogger(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			opts := []convert.Option{}
			if cfg.History.Enabled {
				store, openErr := history.Open(cfg.History.Path)
				if openErr != nil {
					logger.Warn("conversion journal unavailable", logging.Error(openErr))
				} else {
					defer store.Close()
					opts = append(opts, convert.WithRecorder(store))
				}
			}
			converter := convert.New(cfg, logger, opts...)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			rows := make([][]string, 0, len(args))
			var failed int
			for _, source := range args {
				result, convErr := converter.Convert(ctx, source, outputFlag)
				if convErr != nil {
					failed++
				}
				rows = append(rows, []string{
					filepath.Base(result.SourcePath),
					resultLabel(result.Success, result.Degraded),
					strconv.Itoa(result.Images),
					strconv.Itoa(result.Pages),
					result.Message,
				})
				if ctx.Err() != nil {
					return ctx.Err()
				}
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Archive", "Result", "Images", "Pages", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))

			if failed > 0 {
				fmt.Fprintln(out, renderStatusLine("Conversions", statusError,
					fmt.Sprintf("%d of %d failed", failed, len(args)), colorize))
				return fmt.Errorf("%d of %d conversions failed", failed, len(args))
			}
			fmt.Fprintln(out, renderStatusLine("Conversions", statusOK,
				fmt.Sprintf("%d completed", len(args)), colorize))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output document path (single archive only)")
	cmd.Flags().BoolVar(&grayscaleFlag, "grayscale", false, "Render pages in grayscale")
	cmd.Flags().StringVar(&resizeFlag, "resize", "", "Resize preset (A4, LETTER, A3, A5, HD, FHD)")
	cmd.Flags().StringVar(&orderFlag, "order", "", "Page order (natural, alphabetical, reversed)")
	cmd.Flags().StringVar(&speedFlag, "speed", "", "Speed mode (normal, fast, veryfast)")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "Parallel render workers")
	return cmd
}

func resultLabel(success, degraded bool) string {
	switch {
	case success && degraded:
		return "partial"
	case success:
		return "ok"
	default:
		return "failed"
	}
}
