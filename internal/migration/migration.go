package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	bookingdomain "github.com/luciodale/booking-portal-sub002/internal/booking/domain"
	feedomain "github.com/luciodale/booking-portal-sub002/internal/fee/domain"
	paymentdomain "github.com/luciodale/booking-portal-sub002/internal/payment/domain"
	propertydomain "github.com/luciodale/booking-portal-sub002/internal/property/domain"
	settlementdomain "github.com/luciodale/booking-portal-sub002/internal/settlement/domain"
	taxdomain "github.com/luciodale/booking-portal-sub002/internal/tax/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, in dependency order.
func Models() []any {
	return []any{
		&propertydomain.Property{},
		&feedomain.FeeOverride{},
		&taxdomain.CityTaxDefault{},
		&bookingdomain.Booking{},
		&paymentdomain.EventRecord{},
		&settlementdomain.Flag{},
	}
}

// Run brings the schema up to date. Postgres uses the embedded SQL files
// under an advisory lock; other dialects are auto-migrated from the models.
func Run(ctx context.Context, conn *gorm.DB, log *zap.Logger) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	log = log.Named("migration")

	dialect := conn.Dialector.Name()
	if dialect != "postgres" {
		log.Info("auto-migrating schema", zap.String("dialect", dialect))
		return conn.WithContext(ctx).AutoMigrate(Models()...)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	version, err := RunMigrations(ctx, sqlDB)
	if err != nil {
		return err
	}
	log.Info("schema migrated", zap.Uint("version", version))
	return nil
}

// RunMigrations applies all embedded postgres migrations and records the
// resulting schema state.
func RunMigrations(ctx context.Context, db *sql.DB) (uint, error) {
	if db == nil {
		return 0, errors.New("migration database handle is required")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	release, err := lockSchema(ctx, db)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = release(context.Background())
	}()

	latestVersion, err := LatestMigrationVersion()
	if err != nil {
		return 0, err
	}
	checksum, err := MigrationsChecksum()
	if err != nil {
		return 0, err
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return 0, fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return 0, fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return 0, fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return 0, fmt.Errorf("create migrator: %w", err)
	}

	if _, err := ensureNotDirty(migrator); err != nil {
		return 0, err
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", upErr)
	}

	currentVersion, err := ensureNotDirty(migrator)
	if err != nil {
		return 0, err
	}
	if currentVersion != latestVersion {
		return 0, fmt.Errorf("schema version mismatch after migrate: got %d want %d", currentVersion, latestVersion)
	}

	if err := recordSchemaState(ctx, db, strconv.FormatUint(uint64(currentVersion), 10), checksum); err != nil {
		return 0, err
	}
	return currentVersion, nil
}

func ensureNotDirty(migrator *migrate.Migrate) (uint, error) {
	if migrator == nil {
		return 0, errors.New("migrator is required")
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, nil
		}
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("database migrations are dirty at version %d", version)
	}
	return version, nil
}
