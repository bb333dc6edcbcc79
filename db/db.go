package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const dbFileName = "session.db"

// Database variables
var (
	Db   *gorm.DB // GORM database instance
	Path string   // Database file path, see ConfigurePath
)

func init() {
	ConfigurePath()
}

// ConfigurePath resolves the database path from ESCOLA_HOME, then XDG_DATA_HOME, then the user's
// home directory. Failures fall back to the working directory.
func ConfigurePath() {
	if err := ConfigurePathErr(); err != nil {
		log.Warn().Err(err).Msg("Falling back to the working directory for the session database")
		Path = filepath.Join(".escola", dbFileName)
	}
}

// ConfigurePathErr is ConfigurePath with the error surfaced.
func ConfigurePathErr() error {
	if home := os.Getenv("ESCOLA_HOME"); home != "" {
		Path = filepath.Join(home, dbFileName)
		return nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		Path = filepath.Join(xdg, "escola", dbFileName)
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot resolve home directory: %w", err)
	}
	Path = filepath.Join(home, ".escola", dbFileName)
	return nil
}

// InitDB initializes the database and creates the tables if they don't exist.
func InitDB() error {
	if err := createDBDirectory(); err != nil {
		return err
	}

	if err := openDatabase(); err != nil {
		return err
	}

	if err := migrateTables(Db); err != nil {
		return err
	}

	configureLogger()

	log.Info().Str("path", Path).Msg("Database initialized successfully")
	return nil
}

// createDBDirectory checks if the database path exists and creates it if it doesn't.
func createDBDirectory() error {
	if _, err := os.Stat(filepath.Dir(Path)); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(Path), 0o750); err != nil {
			log.Error().Err(err).Msg("Failed to create database directory")
			return err
		}
	}
	return nil
}

// openDatabase opens the database connection.
func openDatabase() error {
	var err error
	Db, err = gorm.Open(sqlite.Open(Path), &gorm.Config{})
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize database")
		return err
	}
	return nil
}

// migrateTables creates the tables if they don't exist.
func migrateTables(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&Entry{}); err != nil {
		log.Error().Err(err).Msg("Failed to auto-migrate database")
		return err
	}
	return nil
}

// Migrate prepares an externally opened database, e.g. an in-memory one in tests.
func Migrate(gdb *gorm.DB) error {
	return migrateTables(gdb)
}

// configureLogger silences GORM unless debug logging is enabled.
func configureLogger() {
	if zerolog.GlobalLevel() == zerolog.Disabled || zerolog.GlobalLevel() > zerolog.DebugLevel {
		Db.Logger = Db.Logger.LogMode(logger.Silent)
	} else {
		Db.Logger = Db.Logger.LogMode(logger.Info)
	}
}

// GetDB returns the global database handle.
func GetDB() *gorm.DB {
	return Db
}

// CloseDB closes the database connection. A nil handle is a no-op.
func CloseDB() error {
	if Db == nil {
		return nil
	}
	sqlDB, err := Db.DB()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get raw database connection")
		return err
	}
	return sqlDB.Close()
}

// Shutdown closes the database and only logs failures; used from interrupt handlers.
func Shutdown() {
	if err := CloseDB(); err != nil {
		log.Error().Err(err).Msg("Failed to close the database")
	}
}
