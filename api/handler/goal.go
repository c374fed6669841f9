package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/focus/api/transport"
	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/pkg/httpcontext"
	goalUC "github.com/fastygo/focus/usecase/goal"
)

type GoalHandler struct {
	baseHandler
	uc *goalUC.UseCase
}

func NewGoalHandler(uc *goalUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *GoalHandler {
	return &GoalHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List goals
// @Tags goals
// @Router /api/v1/goals [get]
func (h *GoalHandler) GetGoals(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	goals, err := h.uc.List(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, goals)
}

// @Summary Get goal
// @Tags goals
// @Router /api/v1/goals/{id} [get]
func (h *GoalHandler) GetGoal(ctx *fasthttp.RequestCtx) {
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

	goal, err := h.uc.Get(stdCtx, userID, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, goal)
}

// @Summary Create goal
// @Tags goals
// @Router /api/v1/goals [post]
func (h *GoalHandler) CreateGoal(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	var req transport.GoalRequest
	if !h.decode(ctx, &req) {
		return
	}
	target, err := parseTime(req.TargetDate)
	if err != nil {
		h.invalid(ctx, "target_date must be RFC3339 or YYYY-MM-DD")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, &domain.Goal{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Icon:        domain.IconKey(req.Icon),
		TargetDate:  target,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.log(stdCtx).Info("goal created", zap.String("goal_id", created.ID))
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Change goal status
// @Tags goals
// @Router /api/v1/goals/{id}/status [put]
func (h *GoalHandler) UpdateStatus(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathID(ctx)
	if id == "" {
		return
	}
	var req transport.GoalStatusRequest
	if !h.decode(ctx, &req) {
		return
	}
	status := domain.GoalStatus(req.Status)
	if !status.Valid() {
		h.invalid(ctx, "unknown goal status")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	goal, err := h.uc.UpdateStatus(stdCtx, userID, id, status)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, goal)
}
