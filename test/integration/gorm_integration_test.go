package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"training-os-be/internal/entity"
	"training-os-be/internal/model"
	"training-os-be/internal/repository/specification"
	"training-os-be/internal/repository/unitofwork"
	"training-os-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("Skipping integration test: TEST_POSTGRES_DSN not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(model.AllModels()...))

	sqlDB, _ := gormDB.DB()
	require.NoError(t, sqlDB.Ping())

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	ctx := context.Background()

	t.Run("Rolled back session is not visible", func(t *testing.T) {
		uow := uowFactory.NewUnitOfWork(ctx)
		require.NoError(t, uow.Begin(ctx))

		extID := "rollback-" + uuid.NewString()
		err := uow.SessionRepository().Create(ctx, &entity.Session{
			Date:            time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			Type:            entity.SessionTypeRun,
			DurationMinutes: 30,
			Source:          entity.SourceFileImport,
			ExternalId:      &extID,
		})
		require.NoError(t, err)
		require.NoError(t, uow.Rollback())

		found, err := uowFactory.NewUnitOfWork(ctx).SessionRepository().FindOne(ctx, specification.BySourceExternalID{
			Source:     string(entity.SourceFileImport),
			ExternalID: extID,
		})
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("Duplicate source key is rejected", func(t *testing.T) {
		repo := uowFactory.NewUnitOfWork(ctx).SessionRepository()
		extID := "dup-" + uuid.NewString()
		newSession := func() *entity.Session {
			return &entity.Session{
				Date:            time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
				Type:            entity.SessionTypeRun,
				DurationMinutes: 40,
				Source:          entity.SourceRemoteSync,
				ExternalId:      &extID,
				EditedFields:    []string{entity.FieldNotes},
				FocusAreas:      []string{"hills"},
			}
		}

		first := newSession()
		require.NoError(t, repo.Create(ctx, first))
		t.Cleanup(func() { _ = repo.Delete(ctx, first.Id) })

		err := repo.Create(ctx, newSession())
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

		stored, err := repo.FindOne(ctx, specification.ByID{ID: first.Id})
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, []string{entity.FieldNotes}, stored.EditedFields)
		assert.Equal(t, []string{"hills"}, stored.FocusAreas)
	})

	t.Run("Day note upsert keeps one row per date", func(t *testing.T) {
		repo := uowFactory.NewUnitOfWork(ctx).DayNoteRepository()
		date := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)

		require.NoError(t, repo.Upsert(ctx, &entity.DayNote{Date: date, Note: "first"}))
		require.NoError(t, repo.Upsert(ctx, &entity.DayNote{Date: date, Note: "second"}))

		notes, err := repo.FindAll(ctx, specification.ByDateRange{From: date, To: date})
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, "second", notes[0].Note)
	})
}
