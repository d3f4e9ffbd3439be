package connection

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cradi/config"
	"cradi/logger"
	"cradi/repository"
)

func DBConnection(cfg config.StoreConfig, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.StoreMySQL:
		dialector = mysql.Open(cfg.DSN)
	case config.StorePostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Gorm(log)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	if cfg.AutoMigrate {
		if err := repository.Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
		log.Info("Database schema migrated")
	}
	return db, nil
}
