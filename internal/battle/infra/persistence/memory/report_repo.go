package memory

import (
	"context"
	"sync"

	"CityCard/internal/battle/entity"
	"CityCard/modules/kit/errx"
)

// ReportRepository 进程内战报存储，单机调试和测试用。
type ReportRepository struct {
	mu     sync.RWMutex
	byRoom map[string]map[int]*entity.RoundReport
	latest map[string]int
}

func NewReportRepository() *ReportRepository {
	return &ReportRepository{
		byRoom: make(map[string]map[int]*entity.RoundReport),
		latest: make(map[string]int),
	}
}

func (r *ReportRepository) Save(ctx context.Context, rep *entity.RoundReport) error {
	_ = ctx
	if rep == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rounds, ok := r.byRoom[rep.Room]
	if !ok {
		rounds = make(map[int]*entity.RoundReport)
		r.byRoom[rep.Room] = rounds
	}
	rounds[rep.Round] = rep
	if rep.Round >= r.latest[rep.Room] {
		r.latest[rep.Room] = rep.Round
	}
	return nil
}

func (r *ReportRepository) Latest(ctx context.Context, room string) (*entity.RoundReport, error) {
	r.mu.RLock()
	round, ok := r.latest[room]
	r.mu.RUnlock()
	if !ok {
		return nil, errx.ErrNotFound.WithData("room", room)
	}
	return r.ByRound(ctx, room, round)
}

func (r *ReportRepository) ByRound(ctx context.Context, room string, round int) (*entity.RoundReport, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.byRoom[room][round]
	if !ok {
		return nil, errx.ErrNotFound.WithData("room", room).WithData("round", round)
	}
	return rep, nil
}

func (r *ReportRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, rounds := range r.byRoom {
		n += len(rounds)
	}
	return n
}
