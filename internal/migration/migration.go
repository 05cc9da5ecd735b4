package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	auditdomain "github.com/smallbiznis/obtain/internal/audit/domain"
	authdomain "github.com/smallbiznis/obtain/internal/auth/domain"
	catalogdomain "github.com/smallbiznis/obtain/internal/catalog/domain"
	contactdomain "github.com/smallbiznis/obtain/internal/contact/domain"
	notificationdomain "github.com/smallbiznis/obtain/internal/notification/domain"
	paymentdomain "github.com/smallbiznis/obtain/internal/payment/domain"
	pricingdomain "github.com/smallbiznis/obtain/internal/pricing/domain"
	referencedomain "github.com/smallbiznis/obtain/internal/reference/domain"
	removaldomain "github.com/smallbiznis/obtain/internal/removal/domain"
	submissiondomain "github.com/smallbiznis/obtain/internal/submission/domain"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// RunMigrations applies the embedded postgres schema.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// Models lists every table owned by the service, parents first.
func Models() []any {
	return []any{
		&authdomain.User{},
		&authdomain.APIKey{},
		&catalogdomain.Tool{},
		&submissiondomain.Submission{},
		&removaldomain.Request{},
		&contactdomain.Message{},
		&referencedomain.Currency{},
		&pricingdomain.Plan{},
		&pricingdomain.PlanPrice{},
		&paymentdomain.Payment{},
		&notificationdomain.OutboxEntry{},
		&auditdomain.AuditLog{},
	}
}

// Apply runs the SQL migrations on postgres and falls back to AutoMigrate on
// the other dialects.
func Apply(conn *gorm.DB) error {
	if conn.Dialector.Name() == "postgres" {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}
	return conn.AutoMigrate(Models()...)
}
