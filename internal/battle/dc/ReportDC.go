package dc

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"CityCard/internal/battle/app/port"
	"CityCard/internal/battle/entity"
	"CityCard/internal/shared/metrics"
	"CityCard/modules/kit/errx"
	"CityCard/modules/kit/logx"
)

const defaultRetryBackoff = 200 * time.Millisecond

// ReportDC 战报异步落库。每回合的战报都要留档，按到达顺序排队，不做合并。
type ReportDC struct {
	repo    port.ReportRepository
	log     logx.Logger
	metrics metrics.Recorder
	driver  string
	backoff time.Duration

	mu      sync.Mutex
	pending []*entity.RoundReport
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

type Option func(*ReportDC)

func WithLogger(l logx.Logger) Option {
	return func(d *ReportDC) { d.log = l }
}

// WithMetrics driver 是写失败指标上的标签。
func WithMetrics(m metrics.Recorder, driver string) Option {
	return func(d *ReportDC) {
		d.metrics = m
		d.driver = driver
	}
}

func WithRetryBackoff(b time.Duration) Option {
	return func(d *ReportDC) { d.backoff = b }
}

func NewReportDC(repo port.ReportRepository, opts ...Option) *ReportDC {
	d := &ReportDC{
		repo:    repo,
		log:     logx.Nop(),
		backoff: defaultRetryBackoff,
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.writerLoop()
	return d
}

// Enqueue 由房间 actor 在回合结算后调用，不阻塞。
func (d *ReportDC) Enqueue(r *entity.RoundReport) error {
	if r == nil {
		return nil
	}
	if d.repo == nil {
		return errx.ErrInvalidSetup.WithData("reason", "report repository is nil")
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return errx.ErrUnavailable.WithData("reason", "report dc closed")
	}
	d.pending = append(d.pending, r)
	d.mu.Unlock()

	d.signal()
	return nil
}

func (d *ReportDC) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Close 停止接收并尽量写完队列，ctx 到期后放弃剩余战报。
func (d *ReportDC) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.stop)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *ReportDC) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *ReportDC) popFront() *entity.RoundReport {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.pending) == 0 {
		return nil
	}
	r := d.pending[0]
	d.pending[0] = nil
	d.pending = d.pending[1:]
	return r
}

// requeueFront 写失败的战报放回队头，保证同一房间的战报按回合顺序落库。
func (d *ReportDC) requeueFront(r *entity.RoundReport) {
	d.mu.Lock()
	d.pending = append([]*entity.RoundReport{r}, d.pending...)
	d.mu.Unlock()
}

func (d *ReportDC) writerLoop() {
	defer close(d.done)

	for {
		select {
		case <-d.wake:
			if !d.consumePending() {
				return
			}
		case <-d.stop:
			d.consumePending()
			return
		}
	}
}

// consumePending 写空队列；关闭过程中遇到写失败就放弃，返回 false 表示循环应退出。
func (d *ReportDC) consumePending() bool {
	for {
		r := d.popFront()
		if r == nil {
			return true
		}
		err := d.repo.Save(context.TODO(), r)
		if err == nil {
			continue
		}
		logx.ReportSysErrorWithLoggerContext(context.TODO(), d.log, logx.NewSysLog("report_save", err),
			zap.String("room", r.Room), zap.Int("round", r.Round), zap.Int64("report_id", r.ID))
		if d.metrics != nil {
			d.metrics.IncSaveFailure(d.driver)
		}
		d.requeueFront(r)

		select {
		case <-d.stop:
			d.log.Warn("report dc closing with unsaved reports", zap.Int("pending", d.Pending()))
			return false
		case <-time.After(d.backoff):
		}
	}
}
