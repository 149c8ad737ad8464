package cli

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/noah-isme/orm-demo/internal/handler"
	"github.com/noah-isme/orm-demo/internal/repository"
	"github.com/noah-isme/orm-demo/internal/schema"
	"github.com/noah-isme/orm-demo/internal/service"
	"github.com/noah-isme/orm-demo/pkg/config"
	"github.com/noah-isme/orm-demo/pkg/database"
	appErrors "github.com/noah-isme/orm-demo/pkg/errors"
	"github.com/noah-isme/orm-demo/pkg/logger"
)

// Run loads configuration, wires the services and executes flow.
func Run(ctx context.Context, flow Flow, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	tables, err := tablesFor(flow)
	if err != nil {
		return err
	}

	metrics := service.NewMetricsService()

	connect := func(ctx context.Context) (service.DatabaseAdmin, error) {
		admin, err := database.ConnectAdmin(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return admin, nil
	}

	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	schemaRepo := repository.NewSchemaRepository(db)

	provisionSvc := service.NewProvisionService(connect, schemaRepo, cfg.Database.Name, tables, metrics, logr)
	seedSvc := service.NewSeedService(studentRepo, courseRepo, enrollmentRepo, metrics, logr)
	reportSvc := service.NewReportService(studentRepo, courseRepo, metrics, logr)

	demo := handler.NewDemoHandler(provisionSvc, seedSvc, reportSvc, out, metrics, logr)

	logr.Info("demo starting", zap.String("flow", string(flow)), zap.String("database", cfg.Database.Name), zap.String("host", cfg.Database.Host))

	switch flow {
	case FlowStudents:
		err = demo.RunStudents(ctx)
	default:
		err = demo.RunEnrollments(ctx)
	}
	if err != nil {
		logr.Error("demo failed", failureFields(flow, err)...)
		return err
	}

	if cfg.Metrics.SummaryEnabled {
		logSummary(logr, metrics)
	}
	return nil
}

func failureFields(flow Flow, err error) []zap.Field {
	fields := []zap.Field{
		zap.String("flow", string(flow)),
		zap.String("code", appErrors.FromError(err).Code),
		zap.Error(err),
	}
	if constraint := appErrors.ConstraintName(err); constraint != "" {
		fields = append(fields, zap.String("constraint", constraint))
	}
	return fields
}

func tablesFor(flow Flow) (schema.Schema, error) {
	switch flow {
	case FlowStudents:
		return schema.StudentsOnly, nil
	case FlowEnrollments:
		return schema.StudentsAndCourses, nil
	default:
		return nil, fmt.Errorf("unknown flow %q", flow)
	}
}

func logSummary(logr *zap.Logger, metrics *service.MetricsService) {
	snap, err := metrics.Snapshot()
	if err != nil {
		logr.Warn("failed to gather metrics", zap.Error(err))
		return
	}
	fields := make([]zap.Field, 0, len(snap.Steps)+len(snap.RowsWritten)+2)
	for _, name := range snap.StepNames() {
		fields = append(fields, zap.Duration("step_"+name, snap.Steps[name]))
	}
	for table, rows := range snap.RowsWritten {
		fields = append(fields, zap.Float64("rows_"+table, rows))
	}
	fields = append(fields,
		zap.Uint64("db_queries", snap.DBQueryCount),
		zap.Float64("db_query_avg_ms", snap.AverageDBQueryDurationMs),
	)
	logr.Info("demo finished", fields...)
}
