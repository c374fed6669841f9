package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/focus/api/transport"
	"github.com/fastygo/focus/pkg/clock"
	"github.com/fastygo/focus/pkg/httpcontext"
	taskUC "github.com/fastygo/focus/usecase/task"
	timerUC "github.com/fastygo/focus/usecase/timer"
)

// TimerHandler exposes task transitions and the open-interval maintenance endpoints.
type TimerHandler struct {
	baseHandler
	timer *timerUC.UseCase
	tasks *taskUC.UseCase
	clock clock.Clock

	// staleAfter applies when a reconcile request omits older_than_seconds.
	staleAfter time.Duration
}

func NewTimerHandler(timer *timerUC.UseCase, tasks *taskUC.UseCase, clk clock.Clock, staleAfter time.Duration, adapter *httpcontext.Adapter, logger *zap.Logger) *TimerHandler {
	if clk == nil {
		clk = clock.System{}
	}
	return &TimerHandler{
		baseHandler: newBaseHandler(adapter, logger),
		timer:       timer,
		tasks:       tasks,
		clock:       clk,
		staleAfter:  staleAfter,
	}
}

// @Summary Start task timer
// @Tags timers
// @Router /api/v1/tasks/{id}/start [post]
func (h *TimerHandler) Start(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathID(ctx)
	if id == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.timer.Start(stdCtx, userID, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.log(stdCtx).Info("timer started", zap.String("task_id", id))
	h.respondSuccess(ctx, http.StatusOK, transport.StartResponse{
		Task:      transport.NewTaskView(res.Task, h.clock.Now()),
		TimeEntry: res.TimeEntry,
	})
}

// @Summary Stop task timer
// @Tags timers
// @Router /api/v1/tasks/{id}/stop [post]
func (h *TimerHandler) Stop(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathID(ctx)
	if id == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.timer.Stop(stdCtx, userID, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.log(stdCtx).Info("timer stopped", zap.String("task_id", id), zap.Int64("duration", res.Duration))
	h.respondSuccess(ctx, http.StatusOK, h.stopView(res))
}

// @Summary Complete task
// @Tags timers
// @Router /api/v1/tasks/{id}/complete [post]
func (h *TimerHandler) Complete(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathID(ctx)
	if id == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.timer.Complete(stdCtx, userID, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.log(stdCtx).Info("task completed", zap.String("task_id", id))
	h.respondSuccess(ctx, http.StatusOK, transport.CompleteResponse{
		Task: transport.NewTaskView(res.Task, h.clock.Now()),
	})
}

// @Summary List open intervals
// @Tags timers
// @Router /api/v1/timers/open [get]
func (h *TimerHandler) OpenIntervals(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.tasks.OpenIntervals(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, entries)
}

// @Summary Stop stale timers
// @Tags timers
// @Router /api/v1/timers/reconcile [post]
func (h *TimerHandler) Reconcile(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	var req transport.ReconcileRequest
	if len(ctx.PostBody()) > 0 && !h.decode(ctx, &req) {
		return
	}
	olderThan := time.Duration(req.OlderThanSeconds) * time.Second
	if req.OlderThanSeconds == 0 {
		olderThan = h.staleAfter
	}
	if olderThan <= 0 {
		h.invalid(ctx, "older_than_seconds must be positive")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.tasks.Reconcile(stdCtx, userID, olderThan)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	out := transport.ReconcileResponse{
		Stopped: make([]transport.StopResponse, 0, len(res.Stopped)),
		Closed:  res.Closed,
	}
	for i := range res.Stopped {
		out.Stopped = append(out.Stopped, h.stopView(&res.Stopped[i]))
	}
	h.respondSuccess(ctx, http.StatusOK, out)
}

func (h *TimerHandler) stopView(res *timerUC.StopResult) transport.StopResponse {
	return transport.StopResponse{
		Task:     transport.NewTaskView(res.Task, h.clock.Now()),
		Duration: res.Duration,
	}
}
