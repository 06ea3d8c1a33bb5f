package reportrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/libops/payrecon/internal/domain"
	"github.com/libops/payrecon/internal/pg"
	"github.com/libops/payrecon/internal/schema"
	"go.uber.org/zap"
)

// Repository owns the reporting tables for one schema version. All writes go
// through the version's generated upsert, so re-running an overlapping date
// range never duplicates a row.
type Repository struct {
	db        pg.Database
	txManager pg.TXManager
	version   schema.Version
	names     schema.TableNames
}

func New(db pg.Database, txManager pg.TXManager, version schema.Version, names schema.TableNames) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
		version:   version,
		names:     names,
	}
}

func (r *Repository) TableExists(ctx context.Context, name string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1
            FROM information_schema.tables
            WHERE table_name = $1
        )
    `
	var exists bool
	err := r.db.QueryRow(ctx, query, strings.ToLower(name)).Scan(&exists)
	if err != nil {
		zap.L().Error("can't check table existence", zap.String("table", name), zap.Error(err))
		return false, err
	}
	return exists, nil
}

// EnsureTables creates any of the version's tables that do not exist yet.
func (r *Repository) EnsureTables(ctx context.Context) error {
	for _, table := range r.version.Tables() {
		name, err := r.names.For(table)
		if err != nil {
			return err
		}
		exists, err := r.TableExists(ctx, name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		zap.L().Info("creating missing reporting table", zap.String("table", name))
		def, err := schema.Def(r.version, table)
		if err != nil {
			return err
		}
		if _, err := r.db.Exec(ctx, def.CreateSQL(name)); err != nil {
			zap.L().Error("can't create table", zap.String("table", name), zap.Error(err))
			return err
		}
	}
	return nil
}

// MostRecentSubmitTime returns the latest persisted submit time across the
// version's tables, or nil when every table is empty.
func (r *Repository) MostRecentSubmitTime(ctx context.Context) (*time.Time, error) {
	var latest *time.Time
	for _, table := range r.version.Tables() {
		name, err := r.names.For(table)
		if err != nil {
			return nil, err
		}
		query := fmt.Sprintf("SELECT max(transaction_submit_time) FROM %s", name)

		var ts *time.Time
		if err := r.db.QueryRow(ctx, query).Scan(&ts); err != nil {
			zap.L().Error("can't query most recent submit time", zap.String("table", name), zap.Error(err))
			return nil, err
		}
		if ts != nil && (latest == nil || ts.After(*latest)) {
			latest = ts
		}
	}
	return latest, nil
}

// UpsertRecords writes a run's output in one transaction. Aeon records are
// skipped when the version predates the aeon table.
func (r *Repository) UpsertRecords(ctx context.Context, feeRecords []domain.FeePaymentRecord, aeonRecords []domain.AeonPaymentRecord) error {
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		if err := r.upsertFeeRecords(ctx, feeRecords); err != nil {
			return err
		}
		return r.upsertAeonRecords(ctx, aeonRecords)
	})
}

func (r *Repository) upsertFeeRecords(ctx context.Context, records []domain.FeePaymentRecord) error {
	if len(records) == 0 {
		return nil
	}
	def, err := schema.Def(r.version, schema.TableFeePayments)
	if err != nil {
		return err
	}
	query := def.UpsertSQL(r.names.FeePayments)

	for _, rec := range records {
		args, err := schema.FeePaymentArgs(r.version, rec)
		if err != nil {
			return err
		}
		if _, err := r.db.Exec(ctx, query, args...); err != nil {
			zap.L().Error("can't upsert fee payment record",
				zap.String("feeID", rec.AlmaFeeID),
				zap.String("transactionID", rec.AuthorizeTransactionID),
				zap.Error(err))
			return err
		}
	}
	zap.L().Info("fee payment records upserted", zap.Int("count", len(records)))
	return nil
}

func (r *Repository) upsertAeonRecords(ctx context.Context, records []domain.AeonPaymentRecord) error {
	if len(records) == 0 {
		return nil
	}
	def, err := schema.Def(r.version, schema.TableAeonPayments)
	if err != nil {
		zap.L().Warn("schema version has no aeon table, skipping aeon records",
			zap.Int("version", int(r.version)),
			zap.Int("count", len(records)))
		return nil
	}
	query := def.UpsertSQL(r.names.AeonPayments)

	for _, rec := range records {
		args, err := schema.AeonPaymentArgs(r.version, rec)
		if err != nil {
			return err
		}
		if _, err := r.db.Exec(ctx, query, args...); err != nil {
			zap.L().Error("can't upsert aeon payment record",
				zap.String("transactionID", rec.AuthorizeTransactionID),
				zap.Error(err))
			return err
		}
	}
	zap.L().Info("aeon payment records upserted", zap.Int("count", len(records)))
	return nil
}

// Migrate applies a single-hop schema migration.
func (r *Repository) Migrate(ctx context.Context, from, to schema.Version) error {
	statements, err := schema.Migrate(from, to, r.names)
	if err != nil {
		return err
	}
	if len(statements) == 0 {
		zap.L().Info("schema already at target version", zap.Int("version", int(to)))
		return nil
	}

	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		for _, stmt := range statements {
			if _, err := r.db.Exec(ctx, stmt); err != nil {
				zap.L().Error("migration statement failed", zap.String("statement", stmt), zap.Error(err))
				return err
			}
		}
		zap.L().Info("schema migrated",
			zap.Int("from", int(from)),
			zap.Int("to", int(to)),
			zap.Int("statements", len(statements)))
		return nil
	})
}
