package handler

import (
	"context"
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"CityCard/internal/battle/app/port"
	"CityCard/internal/battle/entity"
	"CityCard/internal/battle/interfaces/dto"
	"CityCard/modules/kit/errx"
	"CityCard/modules/kit/logx"
)

// StateReader 读房间状态副本，实现方是 actor.Runtime。
type StateReader interface {
	State(ctx context.Context, room string) (*entity.EngineState, error)
}

// Report 只读查询：战报与房间状态。
type Report struct {
	repo  port.ReportRepository
	rooms StateReader
	log   logx.Logger
}

func NewReport(repo port.ReportRepository, rooms StateReader, log logx.Logger) *Report {
	if log == nil {
		log = logx.Nop()
	}
	return &Report{repo: repo, rooms: rooms, log: log}
}

func (h *Report) Register(g *gin.RouterGroup) {
	g.GET("/rooms/:room/report", h.Latest)
	g.GET("/rooms/:room/report/:round", h.ByRound)
	if h.rooms != nil {
		g.GET("/rooms/:room/state", h.State)
	}
}

func (h *Report) Latest(c *gin.Context) {
	rep, err := h.repo.Latest(c.Request.Context(), c.Param("room"))
	if err != nil {
		h.fail(c, "report latest", err)
		return
	}
	c.JSON(nethttp.StatusOK, rep)
}

func (h *Report) ByRound(c *gin.Context) {
	round, err := strconv.Atoi(c.Param("round"))
	if err != nil || round <= 0 {
		h.fail(c, "report by round", errx.ErrInvalidSetup.WithData("round", c.Param("round")))
		return
	}
	rep, err := h.repo.ByRound(c.Request.Context(), c.Param("room"), round)
	if err != nil {
		h.fail(c, "report by round", err)
		return
	}
	c.JSON(nethttp.StatusOK, rep)
}

func (h *Report) State(c *gin.Context) {
	st, err := h.rooms.State(c.Request.Context(), c.Param("room"))
	if err != nil {
		h.fail(c, "room state", err)
		return
	}
	c.JSON(nethttp.StatusOK, dto.NewStateView(st))
}

func (h *Report) fail(c *gin.Context, action string, err error) {
	status := toHTTPStatus(err)
	if status >= nethttp.StatusInternalServerError {
		logx.ReportSysErrorWithLoggerContext(c.Request.Context(), h.log, logx.NewSysLog(action, err),
			zap.String("room", c.Param("room")))
	}
	c.JSON(status, errorBody(err))
}
