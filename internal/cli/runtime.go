package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kingrea/riskaudit/internal/config"
	"github.com/kingrea/riskaudit/internal/logbook"
	"github.com/kingrea/riskaudit/internal/logging"
	"github.com/kingrea/riskaudit/internal/records"
	"github.com/kingrea/riskaudit/internal/workflow"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	projectDir string
	storePath  string
}

// appRuntime bundles everything a command needs. It is opened once per
// command and closed on every exit path.
type appRuntime struct {
	cfg     *config.Config
	logger  *logging.Logger
	logbook *logbook.Logbook
	catalog *workflow.Catalog
	store   *records.Store
}

func openRuntime(ctx context.Context, opts globalOptions) (*appRuntime, error) {
	if err := config.InitRiskAuditDir(opts.projectDir); err != nil {
		return nil, fmt.Errorf("initialize %s: %w", config.RiskAuditDir, err)
	}
	cfg, err := config.NewConfig(opts.projectDir, config.WithStorePath(opts.storePath))
	if err != nil {
		return nil, err
	}
	rt := &appRuntime{cfg: cfg}
	if err := rt.open(ctx); err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.logger.Info("runtime opened",
		zap.String("project_dir", cfg.ProjectDir),
		zap.String("store", rt.store.Path()),
		zap.String("catalog", cfg.CatalogPath()),
	)
	return rt, nil
}

func (rt *appRuntime) open(ctx context.Context) error {
	var err error
	if rt.logger, err = logging.New(rt.cfg.LogPath(), rt.cfg.LogLevel()); err != nil {
		return err
	}
	if rt.logbook, err = logbook.New(rt.cfg.JourneyLogPath()); err != nil {
		return err
	}
	if rt.catalog, err = workflow.LoadCatalogFile(rt.cfg.CatalogPath()); err != nil {
		rt.logger.Error("catalog load failed", zap.String("path", rt.cfg.CatalogPath()), zap.Error(err))
		return err
	}
	if rt.store, err = records.Open(ctx, rt.cfg.StorePath()); err != nil {
		rt.logger.Error("store open failed", zap.String("path", rt.cfg.StorePath()), zap.Error(err))
		return err
	}
	return nil
}

// Close releases the store and flushes the log file.
func (rt *appRuntime) Close() error {
	if rt == nil {
		return nil
	}
	var errs []error
	if rt.store != nil {
		errs = append(errs, rt.store.Close())
	}
	if rt.logger != nil {
		rt.logger.Info("runtime closed")
		errs = append(errs, rt.logger.Close())
	}
	return errors.Join(errs...)
}
