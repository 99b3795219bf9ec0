package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"training-os-be/internal/entity"
	"training-os-be/internal/model"
	"training-os-be/internal/pkg/logger"
	"training-os-be/internal/repository/unitofwork"
	"training-os-be/pkg/database"
	"training-os-be/pkg/keylock"

	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	uow       unitofwork.RepositoryFactory
	locks     *keylock.Locker
	log       logger.ILogger
	reconcile IReconcileService
	sessions  ISessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.NewGormDB(database.GormConfig{
		Driver:   database.DriverSQLite,
		DSN:      filepath.Join(t.TempDir(), "training.db"),
		LogLevel: gormlogger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	env := &testEnv{
		uow:   unitofwork.NewRepositoryFactory(db),
		locks: keylock.New(),
		log:   logger.NewNopLogger(),
	}
	env.reconcile = NewReconcileService(env.uow, env.locks, env.log)
	env.sessions = NewSessionService(env.uow, env.reconcile, env.locks, env.log)
	return env
}

func (e *testEnv) allSessions(t *testing.T) []*entity.Session {
	t.Helper()
	sessions, err := e.uow.NewUnitOfWork(context.Background()).SessionRepository().FindAll(context.Background())
	require.NoError(t, err)
	return sessions
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }
func strp(v string) *string     { return &v }

func fileCandidate(hash, date string, distance float64, minutes int) *entity.Candidate {
	return &entity.Candidate{
		Source:                 entity.SourceFileImport,
		ExternalId:             strp(hash),
		Date:                   day(date),
		Type:                   entity.SessionTypeRun,
		StartTime:              at(date + "T07:00:00Z"),
		DurationMinutes:        minutes,
		ElapsedDurationMinutes: intp(minutes),
		DistanceKm:             floatp(distance),
		Notes:                  "Imported from " + hash + ".fit (fit)",
	}
}
