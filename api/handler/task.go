package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/focus/api/transport"
	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/pkg/clock"
	"github.com/fastygo/focus/pkg/httpcontext"
	"github.com/fastygo/focus/repository"
	taskUC "github.com/fastygo/focus/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc    *taskUC.UseCase
	clock clock.Clock
}

func NewTaskHandler(uc *taskUC.UseCase, clk clock.Clock, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	if clk == nil {
		clk = clock.System{}
	}
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		clock:       clk,
	}
}

// @Summary List tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	args := ctx.QueryArgs()
	filter := repository.TaskFilter{
		UserID:     userID,
		GoalID:     string(args.Peek("goal_id")),
		CategoryID: string(args.Peek("category_id")),
		Status:     string(args.Peek("status")),
		Limit:      parseInt(string(args.Peek("limit")), 50),
		Offset:     parseInt(string(args.Peek("offset")), 0),
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		h.invalid(ctx, "limit and offset must not be negative")
		return
	}
	if filter.Status != "" && !domain.TaskStatus(filter.Status).Valid() {
		h.invalid(ctx, "unknown status")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewTaskViews(tasks, h.clock.Now()))
}

// @Summary Get task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
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

	task, err := h.uc.Get(stdCtx, userID, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewTaskView(task, h.clock.Now()))
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	task, ok := h.parseTask(ctx, userID)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.log(stdCtx).Info("task created", zap.String("task_id", created.ID))
	h.respondSuccess(ctx, http.StatusCreated, transport.NewTaskView(created, h.clock.Now()))
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
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

	if err := h.uc.Delete(stdCtx, userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.log(stdCtx).Info("task deleted", zap.String("task_id", id))
	ctx.SetStatusCode(http.StatusNoContent)
}

// @Summary List time entries of a task
// @Tags tasks
// @Router /api/v1/tasks/{id}/entries [get]
func (h *TaskHandler) GetEntries(ctx *fasthttp.RequestCtx) {
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

	entries, err := h.uc.Entries(stdCtx, userID, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, entries)
}

func (h *TaskHandler) parseTask(ctx *fasthttp.RequestCtx, userID string) (*domain.Task, bool) {
	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return nil, false
	}

	due, err := parseTime(req.DueDate)
	if err != nil {
		h.invalid(ctx, "due_date must be RFC3339 or YYYY-MM-DD")
		return nil, false
	}
	if req.EstimatedDuration < 0 {
		h.invalid(ctx, "estimated_duration must not be negative")
		return nil, false
	}

	return &domain.Task{
		UserID:            userID,
		GoalID:            optional(req.GoalID),
		CategoryID:        optional(req.CategoryID),
		Title:             req.Title,
		Description:       req.Description,
		Priority:          req.Priority,
		DueDate:           due,
		EstimatedDuration: req.EstimatedDuration,
		Metadata:          req.Metadata,
	}, true
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// parseTime accepts RFC3339 timestamps and plain dates. Empty input yields nil.
func parseTime(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed, nil
		}
	}
	return nil, domain.ErrInvalidPayload
}
