package persistence

import (
	"context"
	"fmt"

	"flightwatch-service/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewPostgresDB opens a GORM connection, retrying until the server answers
func NewPostgresDB(ctx context.Context, dsn string, log logger.Logger) (*gorm.DB, error) {
	db, err := retry(ctx, "postgres", log, func() (*gorm.DB, error) {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}
