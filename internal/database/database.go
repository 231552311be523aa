package database

import (
	"fmt"
	"strings"
	"time"

	"has-many-polymorphic/internal/database/models"
	apperrors "has-many-polymorphic/internal/errors"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// uuidColumnTypes maps dialects without a native uuid type to the column type
// `type:uuid` fields are created with there. uuid.UUID is written in its 36
// character text form.
var uuidColumnTypes = map[string]schema.DataType{
	"mysql":     "char(36)",
	"sqlserver": "nvarchar(36)",
}

type Options struct {
	LogLevel        logger.LogLevel
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	SkipMigrate     bool
}

// Dialector returns the gorm dialector for a DB_DRIVER value.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres", "postgresql", "":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "mysql", "mariadb":
		return mysql.Open(dsn), nil
	case "sqlserver", "mssql":
		return sqlserver.Open(dsn), nil
	}
	return nil, fmt.Errorf("%q: %w", driver, apperrors.ErrUnsupportedDriver)
}

// Initialize opens a connection with the given driver and creates the zoo
// schema from the GORM models.
func Initialize(driver, dsn string, opts *Options) (*gorm.DB, error) {
	// Defaults
	if opts == nil {
		opts = &Options{}
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Error
	}
	if opts.MaxOpenConns == 0 {
		opts.MaxOpenConns = 20
	}
	if opts.MaxIdleConns == 0 {
		opts.MaxIdleConns = 10
	}
	if opts.ConnMaxLifetime == 0 {
		opts.ConnMaxLifetime = 30 * time.Minute
	}
	if opts.ConnMaxIdleTime == 0 {
		opts.ConnMaxIdleTime = 10 * time.Minute
	}

	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(opts.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialector.Name(), err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	if err := ColumnTypes(db, models.All()...); err != nil {
		return nil, err
	}
	if !opts.SkipMigrate {
		if err := db.AutoMigrate(models.All()...); err != nil {
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
	}

	return db, nil
}

// ColumnTypes rewrites the `type:uuid` fields of values to the column type
// db's dialect stores UUIDs in. It updates the schemas gorm caches for db, so
// it must run before those models are migrated.
func ColumnTypes(db *gorm.DB, values ...interface{}) error {
	dataType, ok := uuidColumnTypes[db.Dialector.Name()]
	if !ok {
		return nil
	}
	for _, value := range values {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(value); err != nil {
			return fmt.Errorf("parse %T: %w", value, err)
		}
		for _, field := range stmt.Schema.Fields {
			if strings.EqualFold(string(field.DataType), "uuid") {
				field.DataType = dataType
			}
		}
	}
	return nil
}
