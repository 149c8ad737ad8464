package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/orm-demo/internal/schema"
	appErrors "github.com/noah-isme/orm-demo/pkg/errors"
)

// DatabaseAdmin issues server-level statements against the maintenance database.
type DatabaseAdmin interface {
	Exists(ctx context.Context, name string) (bool, error)
	TerminateSessions(ctx context.Context, name string) error
	Drop(ctx context.Context, name string) error
	Create(ctx context.Context, name string) error
	Close() error
}

// AdminConnector opens a DatabaseAdmin. It is called once per Reset.
type AdminConnector func(ctx context.Context) (DatabaseAdmin, error)

type schemaManager interface {
	DropTables(ctx context.Context, s schema.Schema) error
	CreateTables(ctx context.Context, s schema.Schema) error
	ListTables(ctx context.Context) ([]string, error)
}

// ProvisionService rebuilds the demo database from scratch.
type ProvisionService struct {
	connect AdminConnector
	schemas schemaManager
	dbName  string
	tables  schema.Schema
	logger  *zap.Logger
	metrics *MetricsService
}

// NewProvisionService constructs ProvisionService for the named database and table set.
func NewProvisionService(connect AdminConnector, schemas schemaManager, dbName string, tables schema.Schema, metrics *MetricsService, logger *zap.Logger) *ProvisionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProvisionService{connect: connect, schemas: schemas, dbName: dbName, tables: tables, metrics: metrics, logger: logger}
}

// Reset drops the configured database if present, creates it again and
// creates every declared table inside it. Other sessions on the database are
// terminated first and all prior data under the name is destroyed. If the
// server cannot be reached, or the database is still in use, while dropping
// or creating it, that step is skipped and table creation still runs; any
// table creation failure is returned.
func (s *ProvisionService) Reset(ctx context.Context) error {
	start := time.Now()
	defer func() {
		s.metrics.ObserveStep("provision", time.Since(start))
	}()

	if err := s.recreateDatabase(ctx); err != nil {
		switch {
		case appErrors.IsUnreachable(err):
			s.logger.Warn("database server unreachable, skipping drop/create", zap.String("database", s.dbName), zap.Error(err))
		case appErrors.IsObjectInUse(err):
			s.logger.Warn("database still in use, skipping drop/create", zap.String("database", s.dbName), zap.Error(err))
		default:
			return appErrors.FromPostgres(err, fmt.Sprintf("failed to recreate database %s", s.dbName))
		}
	}

	if err := s.schemas.DropTables(ctx, s.tables); err != nil {
		return appErrors.Wrap(err, appErrors.ErrSchema.Code, "failed to drop existing tables")
	}
	if err := s.schemas.CreateTables(ctx, s.tables); err != nil {
		return appErrors.Wrap(err, appErrors.ErrSchema.Code, "failed to create tables")
	}

	present, err := s.schemas.ListTables(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrSchema.Code, "failed to verify tables")
	}
	if missing := missingTables(s.tables.Names(), present); len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrSchema, "tables missing after create: "+strings.Join(missing, ", "))
	}

	s.logger.Info("database provisioned", zap.String("database", s.dbName), zap.Strings("tables", s.tables.Names()))
	return nil
}

func (s *ProvisionService) recreateDatabase(ctx context.Context) error {
	admin, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer admin.Close() //nolint:errcheck

	exists, err := admin.Exists(ctx, s.dbName)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Info("dropping existing database", zap.String("database", s.dbName))
		if err := admin.TerminateSessions(ctx, s.dbName); err != nil {
			return err
		}
		if err := admin.Drop(ctx, s.dbName); err != nil {
			return err
		}
	}
	return admin.Create(ctx, s.dbName)
}

func missingTables(declared, present []string) []string {
	have := make(map[string]bool, len(present))
	for _, name := range present {
		have[name] = true
	}
	var missing []string
	for _, name := range declared {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
