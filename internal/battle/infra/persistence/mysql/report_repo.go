package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"CityCard/internal/battle/entity"
	"CityCard/internal/battle/infra/persistence/model"
	"CityCard/modules/kit/errx"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// AutoMigrate 建 round_report 表，启动时调用一次。
func (r *ReportRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&model.RoundReport{})
}

const OpSaveReport = "repo.report.Save"

func (r *ReportRepository) Save(ctx context.Context, rep *entity.RoundReport) error {
	if rep == nil {
		return nil
	}
	row, err := model.ReportToRow(rep)
	if err != nil {
		return errx.ErrInternal.WithCause(err).WithData("op", OpSaveReport)
	}
	// 同一房间同一回合重复保存时覆盖
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room"}, {Name: "round"}},
		DoUpdates: clause.AssignmentColumns([]string{"id", "destroyed", "payload", "created_at"}),
	}).Create(row).Error
	if err != nil {
		return errx.ErrUnavailable.WithCause(err).WithData("op", OpSaveReport).WithData("room", rep.Room).WithData("round", rep.Round)
	}
	return nil
}

const OpLatestReport = "repo.report.Latest"

func (r *ReportRepository) Latest(ctx context.Context, room string) (*entity.RoundReport, error) {
	var m model.RoundReport
	err := r.db.WithContext(ctx).Where("room = ?", room).Order("round DESC").First(&m).Error
	return r.decode(OpLatestReport, &m, err, map[string]any{"room": room})
}

const OpReportByRound = "repo.report.ByRound"

func (r *ReportRepository) ByRound(ctx context.Context, room string, round int) (*entity.RoundReport, error) {
	var m model.RoundReport
	err := r.db.WithContext(ctx).Where("room = ? AND round = ?", room, round).First(&m).Error
	return r.decode(OpReportByRound, &m, err, map[string]any{"room": room, "round": round})
}

func (r *ReportRepository) decode(op string, m *model.RoundReport, err error, data map[string]any) (*entity.RoundReport, error) {
	switch {
	case err == nil:
		rep, err := model.RowToReport(m)
		if err != nil {
			return nil, errx.ErrInternal.WithCause(err).WithData("op", op)
		}
		return rep, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, withData(errx.ErrNotFound, data)
	default:
		return nil, withData(errx.ErrUnavailable.WithCause(err).WithData("op", op), data)
	}
}

func withData(e *errx.Error, data map[string]any) *errx.Error {
	for k, v := range data {
		e = e.WithData(k, v)
	}
	return e
}
