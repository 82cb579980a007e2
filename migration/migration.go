package migration

import (
	"context"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/questx-lab/rewards/pkg/xcontext"
)

//go:embed mysql/*.sql
var mysqlFS embed.FS

// Source returns the embedded migration files, so the binary can migrate the
// database without shipping them separately.
func Source() (source.Driver, error) {
	return iofs.New(mysqlFS, "mysql")
}

func newMigrate(ctx context.Context) (*migrate.Migrate, error) {
	db, err := xcontext.DB(ctx).DB()
	if err != nil {
		return nil, err
	}

	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return nil, err
	}

	src, err := Source()
	if err != nil {
		return nil, err
	}

	return migrate.NewWithInstance("iofs", src, xcontext.Configs(ctx).Database.Database, driver)
}

// Migrate applies every migration not applied yet.
func Migrate(ctx context.Context) error {
	m, err := newMigrate(ctx)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}

	xcontext.Logger(ctx).Infof("Database is at version %d (dirty=%v)", version, dirty)
	return nil
}

// Rollback reverts the last n migrations.
func Rollback(ctx context.Context, n int) error {
	m, err := newMigrate(ctx)
	if err != nil {
		return err
	}

	if err := m.Steps(-n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
