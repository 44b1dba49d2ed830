package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/config"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	db, err := Open(cfg.DSN())
	if err != nil {
		return err
	}
	DB = db
	slog.Info("database connected")
	return nil
}

// Open returns a tuned GORM handle for dsn without touching the package-level DB.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// Models lists every table owned by the service, parents before children.
func Models() []interface{} {
	return []interface{}{
		&models.Profile{},
		&models.Team{},
		&models.TeamMembership{},
		&models.TeamJoinRequest{},
		&models.Riddle{},
		&models.RiddleRequest{},
		&models.RiddleResponse{},
		&models.Notification{},
		&models.NotificationPreference{},
		&models.Subscription{},
		&models.SystemLog{},
	}
}

// constraintDDL holds constraints AutoMigrate cannot express.
var constraintDDL = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_join_request_pending
		ON team_join_requests (team_id, user_id) WHERE status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS idx_responses_user_correct
		ON riddle_responses (user_id) WHERE is_correct`,
}

// Migrate runs AutoMigrate for all models plus the extra constraint DDL.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range constraintDDL {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("constraint ddl: %w", err)
		}
	}
	return nil
}

func Ping(ctx context.Context) error {
	if DB == nil {
		return errors.New("database not connected")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// IsUniqueViolation reports whether err is a Postgres unique_violation (23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
