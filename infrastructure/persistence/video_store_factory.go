package persistence

import (
	"context"
	"fmt"

	"viewtube/domain/repository"
	"viewtube/infrastructure/configuration"
	"viewtube/infrastructure/logger"
)

// NewVideoStore opens the backend named by cfg.Driver, prepares its schema and
// returns the store together with a function releasing its connections.
func NewVideoStore(ctx context.Context, cfg configuration.Database) (repository.IVideoStore, func() error, error) {
	log := logger.GetLogger().WithField("driver", cfg.Driver)
	noop := func() error { return nil }

	switch cfg.Driver {
	case "", "memory":
		log.Info("using in-memory video store")
		return NewMemoryVideoStore(), noop, nil

	case "postgres", "psql":
		db, err := NewPostgreSQLDB()
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open postgres: %w", err)
		}
		if err := EnsureVideoStoreSchema(db); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		log.Info("using postgres video store")
		return NewVideoStoreRepository(db), db.Close, nil

	case "mssql":
		db, err := NewMSSQLDB()
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open mssql: %w", err)
		}
		if err := EnsureVideoStoreSchemaMSSQL(db); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		log.Info("using mssql video store")
		return NewVideoStoreRepositoryMSSQL(db), db.Close, nil

	case "mysql":
		gdb, err := NewGormMySQLDB()
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open mysql: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, noop, fmt.Errorf("failed to get mysql pool: %w", err)
		}
		if err := EnsureVideoStoreSchemaGorm(gdb); err != nil {
			_ = sqlDB.Close()
			return nil, noop, err
		}
		log.Info("using mysql video store")
		return NewVideoStoreGorm(gdb), sqlDB.Close, nil

	case "mongo", "mongodb":
		m := cfg.Mongo
		client, err := NewMongoDb(m.Host, m.Port, m.User, m.Password, m.Name)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect mongo: %w", err)
		}
		if err := EnsureVideoStoreIndexesMongo(ctx, client, m.Name); err != nil {
			log.WithField("error", err).Warn("failed creating mongo indexes")
		}
		log.Info("using mongo video store")
		closer := func() error { return client.Disconnect(context.Background()) }
		return NewVideoStoreMongo(client, m.Name), closer, nil
	}

	return nil, noop, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
