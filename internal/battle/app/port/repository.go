package port

import (
	"context"

	"CityCard/internal/battle/entity"
)

// ReportRepository 回合战报的存取。查不到时返回 errx.ErrNotFound。
type ReportRepository interface {
	Save(ctx context.Context, r *entity.RoundReport) error
	Latest(ctx context.Context, room string) (*entity.RoundReport, error)
	ByRound(ctx context.Context, room string, round int) (*entity.RoundReport, error)
}
