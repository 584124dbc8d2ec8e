package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"heartcheck/assessment"
	"heartcheck/config"
	qhttp "heartcheck/http"
	"heartcheck/logging"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the risk assessment form",
		Long: `Serve the risk assessment form and its JSON API.

The model artifact is downloaded on first start if it is missing. The
server does not start without a valid artifact.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Watch config for log level changes
	if err := config.Watch(ctx, opts.ConfigPath, a.logger, func(cfg *config.Config) {
		if logging.ApplyLevel(a.level, cfg.Log) {
			a.logger.Info("log level changed", zap.String("level", cfg.Log.Level))
		}
	}); err != nil {
		a.logger.Warn("config watch disabled", zap.Error(err))
	}

	// 2. Open the provisioning ledger
	store, err := a.openLedger()
	if err != nil {
		return err
	}
	defer store.Close()
	a.logger.Info("ledger opened", zap.String("path", a.cfg.Database.Path))

	// 3. Provision and load the model
	assessor, model, err := a.loadAssessor(ctx, store)
	if err != nil {
		a.logger.Error("model unavailable", zap.Error(err))
		return err
	}
	info := qhttp.ModelInfo{
		Type:     a.cfg.Model.Type,
		Path:     a.cfg.Model.Path,
		Features: assessment.FeatureCount,
	}
	if forest, ok := model.(interface{ NumTrees() int }); ok {
		info.Trees = forest.NumTrees()
	}

	// 4. Start HTTP server
	server, err := qhttp.NewServer(qhttp.ServerConfig{
		Port:         a.cfg.Http.Port,
		Timeout:      a.cfg.Http.Timeout,
		MaxBodyBytes: a.cfg.Http.MaxBodyBytes,
	}, qhttp.Dependencies{
		Assessor:       assessor,
		Ledger:         store,
		Metrics:        a.metrics,
		Model:          info,
		Logger:         a.logger,
		MessageTimeout: a.cfg.Http.Timeout,
	})
	if err != nil {
		return err
	}

	errs := make(chan error, 1)
	go func() {
		errs <- server.Start()
	}()

	// 5. Handle graceful shutdown
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	a.logger.Info("shutting down")
	if err := server.Stop(); err != nil {
		a.logger.Warn("server forced to shutdown", zap.Error(err))
	}
	a.logger.Info("exiting")
	return nil
}
