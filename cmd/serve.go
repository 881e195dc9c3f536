package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warroom/scoring-service/internal/config"
	"github.com/warroom/scoring-service/internal/engine"
	"github.com/warroom/scoring-service/internal/reference"
	"github.com/warroom/scoring-service/internal/server"
	"github.com/warroom/scoring-service/internal/store"
	"github.com/warroom/scoring-service/internal/template"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the grading API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		eng, reg, dataset, err := buildEngine()
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		logStartup(cfg)

		srv := server.New(cfg, eng, st, reg, dataset)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// buildEngine assembles the grading engine from configuration: templates,
// reference dataset, and scoring thresholds.
func buildEngine() (*engine.Engine, *template.Registry, reference.Dataset, error) {
	th := engine.ThresholdsFrom(cfg.Scoring)

	var (
		reg *template.Registry
		err error
	)
	if cfg.Reference.TemplatesPath != "" {
		reg, err = template.NewRegistryFromFile(cfg.Reference.TemplatesPath, th)
	} else {
		reg, err = template.NewRegistry(th)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	dataset, err := reference.LoadFile(cfg.Reference.Path)
	if err != nil {
		return nil, nil, nil, err
	}

	eng := engine.New(reg, reference.NewResolver(dataset), cfg.Scoring)
	return eng, reg, dataset, nil
}

// openStore opens the persistence backend named by config.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// logStartup emits the effective configuration at boot, minus secrets.
func logStartup(cfg *config.Config) {
	zap.L().Info("configuration loaded",
		zap.String("store_driver", cfg.Store.Driver),
		zap.Int("port", cfg.Server.Port),
		zap.String("reference_path", cfg.Reference.Path),
		zap.Bool("admin_key_set", cfg.Admin.Key != ""),
	)
}
