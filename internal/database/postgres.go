package database

import (
	"fmt"

	"ewaste-exchange/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func postgresDialector(cfg config.PostgresConfig) gorm.Dialector {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslMode)
	return postgres.Open(dsn)
}
