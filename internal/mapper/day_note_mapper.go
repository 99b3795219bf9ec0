package mapper

import (
	"time"

	"training-os-be/internal/entity"
	"training-os-be/internal/model"
)

type DayNoteMapper struct{}

func NewDayNoteMapper() *DayNoteMapper {
	return &DayNoteMapper{}
}

func (m *DayNoteMapper) ToEntity(n *model.DayNote) *entity.DayNote {
	if n == nil {
		return nil
	}
	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}
	return &entity.DayNote{
		Date:      DateOf(n.Date),
		Note:      n.Note,
		CreatedAt: n.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *DayNoteMapper) ToModel(n *entity.DayNote) *model.DayNote {
	if n == nil {
		return nil
	}
	return &model.DayNote{
		Date:      ToDate(n.Date),
		Note:      n.Note,
		CreatedAt: n.CreatedAt,
	}
}

func (m *DayNoteMapper) ToEntities(notes []*model.DayNote) []*entity.DayNote {
	entities := make([]*entity.DayNote, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}

type WeeklyPlanMapper struct{}

func NewWeeklyPlanMapper() *WeeklyPlanMapper {
	return &WeeklyPlanMapper{}
}

func (m *WeeklyPlanMapper) ToEntity(p *model.WeeklyPlan) *entity.WeeklyPlan {
	if p == nil {
		return nil
	}
	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}
	return &entity.WeeklyPlan{
		Year:             p.Year,
		WeekNumber:       p.WeekNumber,
		Description:      p.Description,
		TargetDistanceKm: p.TargetDistanceKm,
		TargetSessions:   p.TargetSessions,
		Tags:             p.Tags,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *WeeklyPlanMapper) ToModel(p *entity.WeeklyPlan) *model.WeeklyPlan {
	if p == nil {
		return nil
	}
	return &model.WeeklyPlan{
		Year:             p.Year,
		WeekNumber:       p.WeekNumber,
		Description:      p.Description,
		TargetDistanceKm: p.TargetDistanceKm,
		TargetSessions:   p.TargetSessions,
		Tags:             p.Tags,
		CreatedAt:        p.CreatedAt,
	}
}

func (m *WeeklyPlanMapper) ToEntities(plans []*model.WeeklyPlan) []*entity.WeeklyPlan {
	entities := make([]*entity.WeeklyPlan, len(plans))
	for i, p := range plans {
		entities[i] = m.ToEntity(p)
	}
	return entities
}
