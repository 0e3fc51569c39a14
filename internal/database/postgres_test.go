package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	dbdriver "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	src "github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct{ upErr, downErr error }

func (f fakeMigrator) Up() error   { return f.upErr }
func (f fakeMigrator) Down() error { return f.downErr }

func restore() {
	pgxpoolNew = pgxpool.New
	sqlOpenDB = sql.Open
	postgresWithInstanceFn = postgres.WithInstance
	iofsNewFn = iofs.New
	migrateNewWithInstance = func(sourceName string, sourceDriver src.Driver, databaseName string, databaseDriver dbdriver.Driver) (migrateInstance, error) {
		m, err := migrate.NewWithInstance(sourceName, sourceDriver, databaseName, databaseDriver)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

// stubMigrationSteps 讓 newMigrator 走到 migrateNewWithInstance，並回傳指定的 migrator
func stubMigrationSteps(m migrateInstance) {
	sqlOpenDB = func(string, string) (*sql.DB, error) { return sql.Open("pgx", "") }
	postgresWithInstanceFn = func(*sql.DB, *postgres.Config) (dbdriver.Driver, error) { return nil, nil }
	iofsNewFn = func(fs.FS, string) (src.Driver, error) { return nil, nil }
	migrateNewWithInstance = func(string, src.Driver, string, dbdriver.Driver) (migrateInstance, error) { return m, nil }
}

func TestNewPgxPool(t *testing.T) {
	t.Cleanup(restore)
	pgxpoolNew = func(context.Context, string) (*pgxpool.Pool, error) { return nil, errors.New("bad") }
	_, err := NewPgxPool(context.Background(), "url")
	require.Error(t, err)

	pgxpoolNew = func(context.Context, string) (*pgxpool.Pool, error) { return &pgxpool.Pool{}, nil }
	db, err := NewPgxPool(context.Background(), "url")
	require.NoError(t, err)
	require.NotNil(t, db)
}

func TestNewMigratorErrors(t *testing.T) {
	t.Cleanup(restore)
	for _, run := range []func(string) error{RunMigrations, RollbackAll} {
		restore()
		sqlOpenDB = func(string, string) (*sql.DB, error) { return nil, errors.New("open") }
		require.EqualError(t, run("url"), "open")

		sqlOpenDB = func(string, string) (*sql.DB, error) { return sql.Open("pgx", "") }
		postgresWithInstanceFn = func(*sql.DB, *postgres.Config) (dbdriver.Driver, error) { return nil, errors.New("drv") }
		require.EqualError(t, run("url"), "drv")

		postgresWithInstanceFn = func(*sql.DB, *postgres.Config) (dbdriver.Driver, error) { return nil, nil }
		iofsNewFn = func(fs.FS, string) (src.Driver, error) { return nil, errors.New("src") }
		require.EqualError(t, run("url"), "src")

		iofsNewFn = func(fs.FS, string) (src.Driver, error) { return nil, nil }
		migrateNewWithInstance = func(string, src.Driver, string, dbdriver.Driver) (migrateInstance, error) {
			return nil, errors.New("mig")
		}
		require.EqualError(t, run("url"), "mig")
	}
}

func TestRunMigrations(t *testing.T) {
	t.Cleanup(restore)
	stubMigrationSteps(fakeMigrator{upErr: errors.New("up")})
	require.EqualError(t, RunMigrations("url"), "up")

	stubMigrationSteps(fakeMigrator{upErr: migrate.ErrNoChange})
	require.NoError(t, RunMigrations("url"))

	stubMigrationSteps(fakeMigrator{})
	require.NoError(t, RunMigrations("url"))
}

func TestRollbackAll(t *testing.T) {
	t.Cleanup(restore)
	stubMigrationSteps(fakeMigrator{downErr: errors.New("down")})
	require.EqualError(t, RollbackAll("url"), "down")

	stubMigrationSteps(fakeMigrator{downErr: migrate.ErrNoChange})
	require.NoError(t, RollbackAll("url"))
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	require.Len(t, files, 4)

	tasks, err := fs.ReadFile(migrationsFS, "migrations/000002_create_tasks.up.sql")
	require.NoError(t, err)
	ddl := string(tasks)
	require.Contains(t, ddl, "created_by  INTEGER      NOT NULL REFERENCES users(id) ON DELETE CASCADE")
	require.Contains(t, ddl, "assigned_to INTEGER      REFERENCES users(id) ON DELETE SET NULL")
	require.Contains(t, ddl, "DEFAULT 'todo'")
	require.Contains(t, ddl, "DEFAULT 'medium'")

	users, err := fs.ReadFile(migrationsFS, "migrations/000001_create_users.up.sql")
	require.NoError(t, err)
	require.True(t, strings.Contains(string(users), "email         VARCHAR(255) NOT NULL UNIQUE"))
}
