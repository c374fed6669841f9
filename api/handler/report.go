package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/focus/pkg/httpcontext"
	reportUC "github.com/fastygo/focus/usecase/report"
)

type ReportHandler struct {
	baseHandler
	uc *reportUC.UseCase
}

func NewReportHandler(uc *reportUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Aggregated progress report
// @Tags reports
// @Param goal_id query string false "limit the report to one goal"
// @Param days query int false "length of the daily series"
// @Router /api/v1/aggregate [get]
func (h *ReportHandler) Aggregate(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	args := ctx.QueryArgs()
	days := 0
	if raw := string(args.Peek("days")); raw != "" {
		days = parseInt(raw, -1)
		if days <= 0 {
			h.invalid(ctx, "days must be a positive integer")
			return
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	report, err := h.uc.Aggregate(stdCtx, reportUC.Query{
		UserID: userID,
		GoalID: string(args.Peek("goal_id")),
		Days:   days,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, report)
}
