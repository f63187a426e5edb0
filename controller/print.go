package controller

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"cudliy/dao/mysql"
	"cudliy/logic"
	"cudliy/models"
)

// PrintHandler exposes the print queue over HTTP.
type PrintHandler struct {
	svc *logic.PrintService
}

func NewPrintHandler(svc *logic.PrintService) *PrintHandler {
	return &PrintHandler{svc: svc}
}

// Enqueue queues a completed creation for printing. The print cost is
// deducted from the user's tokens in the same transaction as the insert.
// @Summary Enqueue a print job
// @Tags Print
// @Accept json
// @Produce json
// @Param request body models.PrintForm true "creation id and product name"
// @Success 200 {object} Response "queued print job"
// @Router /api/v1/prints [post]
func (h *PrintHandler) Enqueue(c *gin.Context) {
	userID, err := getCurrentUserID(c)
	if err != nil {
		ResponseError(c, CodeNeedLogin)
		return
	}

	var form models.PrintForm
	if err := c.ShouldBindJSON(&form); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			ResponseError(c, CodeInvalidParams)
			return
		}
		ResponseErrorWithMsg(c, CodeInvalidParams, removeTopStruct(errs.Translate(trans)))
		return
	}

	job, err := h.svc.Enqueue(userID, form.CreationID, form.ProductName)
	if err != nil {
		switch {
		case errors.Is(err, mysql.ErrCreationNotFound), errors.Is(err, logic.ErrNotOwner):
			ResponseError(c, CodeCreationNotFound)
		case errors.Is(err, logic.ErrNoModel):
			ResponseErrorWithMsg(c, CodeStageOrder, err.Error())
		case errors.Is(err, mysql.ErrInsufficientTokens):
			ResponseError(c, CodeInsufficientTokens)
		default:
			zap.L().Error("print enqueue failed", zap.Error(err))
			ResponseError(c, CodeServerBusy)
		}
		return
	}
	ResponseSuccess(c, job)
}

// Get returns one print job.
// @Summary Get a print job
// @Tags Print
// @Produce json
// @Param id path string true "print id"
// @Success 200 {object} Response "print job"
// @Router /api/v1/prints/{id} [get]
func (h *PrintHandler) Get(c *gin.Context) {
	userID, err := getCurrentUserID(c)
	if err != nil {
		ResponseError(c, CodeNeedLogin)
		return
	}
	job, err := mysql.GetPrintJob(c.Param("id"))
	if err != nil || job.UserID != userID {
		ResponseErrorWithMsg(c, CodeInvalidParams, "print job not found")
		return
	}
	ResponseSuccess(c, job)
}

// List returns the user's print jobs, newest first.
// @Summary List print jobs
// @Tags Print
// @Produce json
// @Success 200 {object} Response "print jobs"
// @Router /api/v1/prints [get]
func (h *PrintHandler) List(c *gin.Context) {
	userID, err := getCurrentUserID(c)
	if err != nil {
		ResponseError(c, CodeNeedLogin)
		return
	}
	jobs, err := h.svc.List(userID)
	if err != nil {
		zap.L().Error("list print jobs failed", zap.Error(err))
		ResponseError(c, CodeServerBusy)
		return
	}
	ResponseSuccess(c, jobs)
}
