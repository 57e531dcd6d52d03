package store

import (
	"context"

	"github.com/rs/zerolog"

	"radiology-portal/internal/db"
)

// Open connects to Postgres and migrates the schema when dsn is set;
// otherwise it returns a MemoryStore holding the demo seed. The returned
// func releases the connection.
func Open(ctx context.Context, dsn string, logger zerolog.Logger) (Store, func(), error) {
	if dsn == "" {
		logger.Info().Msg("DATABASE_URL not set, using seeded in-memory store")
		return NewMemoryStore(DefaultSeed()), func() {}, nil
	}
	conn, err := db.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := db.New(conn).Migrate(ctx); err != nil {
		conn.Close()
		return nil, nil, err
	}
	logger.Info().Msg("connected to database")
	return NewPostgresStore(conn), func() { conn.Close() }, nil
}
