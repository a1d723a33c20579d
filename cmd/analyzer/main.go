package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/andreaessedj/analyzer/internal/analyzer"
	"github.com/andreaessedj/analyzer/internal/config"
	"github.com/andreaessedj/analyzer/internal/domain"
	"github.com/andreaessedj/analyzer/internal/feedback"
	analyzerhttp "github.com/andreaessedj/analyzer/internal/http"
	"github.com/andreaessedj/analyzer/internal/service"
	"github.com/andreaessedj/analyzer/internal/storage"
	"github.com/andreaessedj/analyzer/internal/store/supabase"
)

const version = "0.1.0"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:          "analyzer",
		Short:        "Mix quality analysis for the track catalog",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default: analyzer.yaml in . or /etc/analyzer)")

	root.AddCommand(serveCmd(&configPath), analyzeCmd(&configPath), versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with the live feedback feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			// The publish hook targets the server that serves the use case;
			// srv is assigned before any request can fire the hook.
			var srv *analyzerhttp.Server
			uc := buildUseCase(cfg, log, func(rec domain.FeedbackRecord) {
				srv.Publish(rec)
			})
			srv = analyzerhttp.NewServer(analyzerhttp.Config{
				Addr:        cfg.Addr,
				CORSOrigins: cfg.CORSOrigins,
			}, uc, log)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.Run(ctx)
		},
	}
}

func analyzeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <track-id>",
		Short: "Analyze a single track and print its feedback record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			rec, err := buildUseCase(cfg, log, nil).Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the analyzer version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

func buildUseCase(cfg config.Config, log *logrus.Logger, publish func(domain.FeedbackRecord)) *service.AnalyzeUseCase {
	store := supabase.New(cfg.SupabaseURL, cfg.SupabaseKey, log)
	return service.NewAnalyzeUseCase(service.Deps{
		Tracks:    store,
		Files:     storage.NewDownloader(cfg.FetchTimeout),
		Sink:      store,
		Extractor: analyzer.New(analyzer.Config{FrameLen: cfg.FrameLen, HopLen: cfg.HopLen}),
		Thresholds: feedback.Thresholds{
			QuietLoudness: cfg.QuietLoudness,
			ClipPeak:      cfg.ClipPeak,
			NarrowSpread:  cfg.NarrowSpread,
		},
		Publish: publish,
		Log:     log,
	})
}
