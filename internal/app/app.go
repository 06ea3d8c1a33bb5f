package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/libops/payrecon/internal/config"
	"github.com/libops/payrecon/internal/gateway"
	"github.com/libops/payrecon/internal/ledger"
	"github.com/libops/payrecon/internal/pg"
	"github.com/libops/payrecon/internal/pipeline"
	reportrepo "github.com/libops/payrecon/internal/repo/report-repo"
	"github.com/libops/payrecon/internal/schema"
	"github.com/libops/payrecon/pkg/clients"
	"github.com/libops/payrecon/pkg/logger"
)

// lookBehind is subtracted from the most recent persisted submit time when
// deriving a default range start, so transactions that settled after the
// previous run are picked up again. The upsert keeps the overlap harmless.
const lookBehind = 48 * time.Hour

type Application struct{}

func New() *Application {
	return &Application{}
}

// Run executes one invocation end to end: parse configuration, then either
// apply a schema migration or reconcile a date range.
func (a *Application) Run(ctx context.Context, args []string) error {
	cfg, err := config.New(args)
	if err != nil {
		return fmt.Errorf("can't load config: %w", err)
	}

	if err := logger.InitLogger(cfg.LogLvl); err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	if cfg.Mode == config.ModeMigrate {
		return a.migrate(ctx, cfg)
	}
	return a.reconcile(ctx, cfg)
}

func (a *Application) migrate(ctx context.Context, cfg *config.Config) error {
	current, err := schema.Parse(cfg.MigrateCurrent)
	if err != nil {
		return err
	}
	target, err := schema.Parse(cfg.MigrateTarget)
	if err != nil {
		return err
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	defer pool.Close()

	repo := reportrepo.New(pg.New(pool), pg.NewTXManager(pool), target, tableNames(cfg))
	return repo.Migrate(ctx, current, target)
}

func (a *Application) reconcile(ctx context.Context, cfg *config.Config) error {
	version, err := schema.Parse(cfg.SchemaVersion)
	if err != nil {
		return err
	}

	// A dry run with an explicit start date touches nothing, so it runs
	// without a database at all.
	var repo *reportrepo.Repository
	if !cfg.DryRun || cfg.FromDate == nil {
		pool, err := getPgxpool(ctx, cfg)
		if err != nil {
			zap.L().Error("build pgx pool failed: ", zap.Error(err))
			return fmt.Errorf("can't build pgx pool: %w", err)
		}
		defer pool.Close()

		repo = reportrepo.New(pg.New(pool), pg.NewTXManager(pool), version, tableNames(cfg))
		if err := repo.EnsureTables(ctx); err != nil {
			return fmt.Errorf("can't ensure reporting tables: %w", err)
		}
	}

	from, to, err := a.resolveRange(ctx, cfg, repo)
	if err != nil {
		return err
	}
	zap.L().Info("reconciling settled transactions",
		zap.Time("from", from),
		zap.Time("to", to),
		zap.Bool("dryRun", cfg.DryRun))

	gatewayURL, err := cfg.GatewayURL()
	if err != nil {
		return err
	}
	httpClient := clients.NewHTTPClient()
	gw := gateway.New(gatewayURL, cfg.GatewayLogin, cfg.GatewayKey, httpClient)
	led := ledger.New(cfg.LedgerURL(), cfg.LedgerAPIKey, httpClient)

	items, errCh := pipeline.NewPaginator(gw).Transactions(ctx, from, to)
	partition := pipeline.Collect(items)
	if err := <-errCh; err != nil {
		return fmt.Errorf("can't fetch settled transactions: %w", err)
	}

	result, err := pipeline.NewReconciler(led).Reconcile(ctx, partition)
	if err != nil {
		return err
	}

	if cfg.DryRun {
		zap.L().Info("dry run, skipping persistence",
			zap.Int("feeRecords", len(result.FeeRecords)),
			zap.Int("aeonRecords", len(result.AeonRecords)),
			zap.Int("diagnostics", len(result.Diagnostics)))
		return nil
	}
	return repo.UpsertRecords(ctx, result.FeeRecords, result.AeonRecords)
}

// resolveRange fills in unset range boundaries: the end defaults to today,
// the start to just before the most recent persisted transaction, or to one
// month back when the tables are empty.
func (a *Application) resolveRange(ctx context.Context, cfg *config.Config, repo *reportrepo.Repository) (time.Time, time.Time, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	to := today
	if cfg.ToDate != nil {
		to = *cfg.ToDate
	}

	if cfg.FromDate != nil {
		return *cfg.FromDate, to, nil
	}

	latest, err := repo.MostRecentSubmitTime(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("can't derive range start: %w", err)
	}
	if latest != nil {
		return latest.Add(-lookBehind), to, nil
	}
	return today.AddDate(0, -1, 0), to, nil
}

func tableNames(cfg *config.Config) schema.TableNames {
	return schema.TableNames{
		FeePayments:  cfg.FeeTableName,
		AeonPayments: cfg.AeonTableName,
	}
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}
