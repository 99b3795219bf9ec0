package implementation

import (
	"context"
	"errors"

	"training-os-be/internal/entity"
	"training-os-be/internal/mapper"
	"training-os-be/internal/model"
	"training-os-be/internal/repository/contract"
	"training-os-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DayNoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DayNoteMapper
}

func NewDayNoteRepository(db *gorm.DB) contract.DayNoteRepository {
	return &DayNoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewDayNoteMapper(),
	}
}

func (r *DayNoteRepositoryImpl) Upsert(ctx context.Context, note *entity.DayNote) error {
	m := r.mapper.ToModel(note)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"note", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	stored, err := r.FindOne(ctx, specification.ByDate{Date: note.Date})
	if err != nil {
		return err
	}
	if stored != nil {
		*note = *stored
	}
	return nil
}

func (r *DayNoteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DayNote, error) {
	var m model.DayNote
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DayNoteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DayNote, error) {
	var models []*model.DayNote
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
