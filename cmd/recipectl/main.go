// Package main 是擷取流程的命令列工具：對一個連結或本機檔案執行擷取並輸出食譜
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recipe-collector/internal/core/classify"
	"recipe-collector/internal/core/export"
	"recipe-collector/internal/core/extract"
	"recipe-collector/internal/infrastructure/bootstrap"
	"recipe-collector/internal/infrastructure/config"
	"recipe-collector/internal/pkg/common"
)

const appName = "recipectl"

// Version 於建置時以 -ldflags 覆寫
var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Extract recipes from links, videos and images",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(extractCmd(&logLevel))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func extractCmd(logLevel *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "extract <url|file> [source-url]",
		Short: "Run the extraction pipeline and print the recipe",
		Long: `Extract runs the same pipeline as the API server.

The first argument is either a link (video platform or recipe webpage) or a
local image/video file. For files, an optional second argument gives the
source URL used as caption context.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			common.InitConsoleLogger(*logLevel)
			defer common.Sync()

			in, err := buildInput(args)
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			app, err := bootstrap.New(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runExtract(ctx, cmd, app.Orchestrator, in, f)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Output format (markdown, cooklang)")

	return cmd
}

type runner interface {
	Run(ctx context.Context, in extract.Input) (*extract.Result, error)
}

func runExtract(ctx context.Context, cmd *cobra.Command, r runner, in extract.Input, f export.Format) error {
	res, err := r.Run(ctx, in)
	if err != nil {
		var failure *extract.Failure
		if errors.As(err, &failure) {
			common.LogWarn("擷取失敗", zap.String("path", failure.Path()), zap.String("reason", failure.Reason))
			return fmt.Errorf("%s (%s)", failure.Err, failure.Path())
		}
		return err
	}

	out, err := export.Render(res.Recipe, f)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	fmt.Fprintf(cmd.ErrOrStderr(), "path: %s\n", pathOf(res.Attempts))
	return nil
}

// buildInput 把參數轉成擷取輸入；存在的本機檔案視為上傳的媒體
func buildInput(args []string) (extract.Input, error) {
	target := args[0]
	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		return extract.Input{Text: strings.Join(args, " ")}, nil
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return extract.Input{}, fmt.Errorf("read %s: %w", target, err)
	}

	in := extract.Input{Media: data}
	if len(args) > 1 {
		in.Text = args[1]
	}

	mt := mimetype.Detect(data)
	switch {
	case strings.HasPrefix(mt.String(), "image/"):
		in.MediaKind = classify.MediaImage
	case strings.HasPrefix(mt.String(), "video/"):
		in.MediaKind = classify.MediaVideo
	default:
		return extract.Input{}, fmt.Errorf("unsupported file type %s", mt.String())
	}
	in.MimeType = mt.String()
	return in, nil
}

func pathOf(attempts []extract.Attempt) string {
	names := make([]string, len(attempts))
	for i, a := range attempts {
		names[i] = fmt.Sprintf("%s:%s", a.State, a.Outcome)
	}
	return strings.Join(names, " -> ")
}
