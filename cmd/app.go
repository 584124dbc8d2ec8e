package cmd

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"heartcheck/assessment"
	"heartcheck/config"
	"heartcheck/db"
	"heartcheck/logging"
	"heartcheck/ml"
	"heartcheck/monitoring"
	"heartcheck/provision"
)

// app is what every command needs before doing its own work.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	level   zap.AtomicLevel
	metrics *monitoring.Metrics
}

func newApp(opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, level, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &app{
		cfg:     cfg,
		logger:  logger,
		level:   level,
		metrics: monitoring.NewMetrics(),
	}, nil
}

func (a *app) openLedger() (*db.Store, error) {
	store, err := db.Open(a.cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return store, nil
}

// provisioner fetches the configured artifact from Drive and only accepts a
// file the encoder can feed.
func (a *app) provisioner(ledger provision.Ledger) *provision.Provisioner {
	model := a.cfg.Model
	return &provision.Provisioner{
		Path:     model.Path,
		SourceID: model.SourceID,
		Fetcher:  provision.NewDriveFetcher(model.SourceURL, &http.Client{}),
		Validate: func(path string) error {
			_, err := ml.LoadModel(model.Type, path, assessment.FeatureNames())
			return err
		},
		Timeout:  model.FetchTimeout,
		Progress: provision.LogProgress(a.logger),
		Ledger:   ledger,
		Metrics:  a.metrics,
		Logger:   a.logger,
	}
}

// loadAssessor provisions the artifact when needed, then loads it.
func (a *app) loadAssessor(ctx context.Context, ledger provision.Ledger) (*assessment.Assessor, ml.Classifier, error) {
	if _, err := a.provisioner(ledger).Ensure(ctx); err != nil {
		return nil, nil, err
	}
	model, err := ml.LoadModel(a.cfg.Model.Type, a.cfg.Model.Path, assessment.FeatureNames())
	if err != nil {
		return nil, nil, fmt.Errorf("load model %s: %w", a.cfg.Model.Path, err)
	}
	assessor, err := assessment.NewAssessor(model,
		assessment.WithCache(a.cfg.Cache.Size),
		assessment.WithMetrics(a.metrics),
		assessment.WithLogger(a.logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return assessor, model, nil
}
