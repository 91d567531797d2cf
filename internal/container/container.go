package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"liftcast/adapters/logfile"
	"liftcast/adapters/postgres"
	"liftcast/app"
	"liftcast/domain/core"
	"liftcast/internal"
	"liftcast/internal/api"
	"liftcast/internal/config"
	"liftcast/internal/errors"
	"liftcast/internal/migration"
	"liftcast/internal/observability"
	"liftcast/internal/testkit"
	"liftcast/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure, set only for the postgres data source
	DB *sqlx.DB

	Source  ports.ObservationSource
	Metrics *observability.Metrics
	Model   *app.ModelService
	API     *api.Handler
}

// New wires the raw log store selected by DATA_SOURCE into a model service.
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	c := &Container{Config: cfg, Logger: logger}

	source, err := c.buildSource(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Source = source

	loc, err := core.LoadLocation(cfg.Model.Timezone)
	if err != nil {
		c.Close()
		return nil, errors.ConfigInvalid(fmt.Sprintf("unknown TIMEZONE %q", cfg.Model.Timezone))
	}

	c.Metrics = observability.NewMetrics()
	c.Model = app.NewModelService(source, app.ModelServiceOptions{
		Location: loc,
		Advisor:  app.NewAdvisor(cfg.Model.AdviceEntropyThreshold),
		Logger:   logger,
		Metrics:  c.Metrics,
	})
	c.API = api.NewHandler(c.Model, c.Metrics, logger)

	logger.With("Container").Info("data source %s, timezone %s", source.Name(), loc)
	return c, nil
}

func (c *Container) buildSource(ctx context.Context) (ports.ObservationSource, error) {
	switch c.Config.Data.Source {
	case config.SourceFile:
		layout := logfile.DefaultLayout()
		if c.Config.Data.LayoutFile != "" {
			var err error
			if layout, err = logfile.LoadLayout(c.Config.Data.LayoutFile); err != nil {
				return nil, errors.Wrap(err, "failed to load log layout")
			}
		}
		return logfile.NewSource(c.Config.Data.LogFile, layout, c.Logger), nil

	case config.SourcePostgres:
		db, err := InitDatabase(ctx, c.Config.Database.URL)
		if err != nil {
			return nil, err
		}
		c.DB = db
		return postgres.NewObservationRepository(db), nil

	case config.SourceSynthetic:
		gen := testkit.DefaultElevatorConfig()
		gen.Days = c.Config.Data.SyntheticDays
		gen.Seed = c.Config.Data.SyntheticSeed
		return testkit.NewSyntheticSource(gen), nil
	}
	return nil, errors.ConfigInvalid(fmt.Sprintf("unknown DATA_SOURCE %q", c.Config.Data.Source))
}

// InitDatabase connects to PostgreSQL and applies the schema.
func InitDatabase(ctx context.Context, url string) (*sqlx.DB, error) {
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.DatabaseError("database migration failed", err)
	}
	return db, nil
}

// Close releases the database connection, if any.
func (c *Container) Close() error {
	if c.DB == nil {
		return nil
	}
	err := c.DB.Close()
	c.DB = nil
	return err
}
