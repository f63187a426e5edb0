package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"cudliy/dao/mysql"
	"cudliy/dao/store"
	"cudliy/logic"
	"cudliy/models"
)

// CreationHandler exposes the creation pipeline over HTTP. fields are
// injected so tests can run it against fakes.
type CreationHandler struct {
	svc *logic.CreationService
}

func NewCreationHandler(svc *logic.CreationService) *CreationHandler {
	return &CreationHandler{svc: svc}
}

// Submit creates the persisted record for a new creation.
// @Summary Submit a creation
// @Description Create a pending creation record from the user's description. Generation stages are triggered separately.
// @Tags Creation
// @Accept json
// @Produce json
// @Param request body models.CreationForm true "description text"
// @Success 200 {object} Response "creation record"
// @Router /api/v1/creations [post]
func (h *CreationHandler) Submit(c *gin.Context) {
	userID, err := getCurrentUserID(c)
	if err != nil {
		ResponseError(c, CodeNeedLogin)
		return
	}

	var form models.CreationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			ResponseError(c, CodeInvalidParams)
			return
		}
		ResponseErrorWithMsg(c, CodeInvalidParams, removeTopStruct(errs.Translate(trans)))
		return
	}

	creation, err := h.svc.Submit(c.Request.Context(), userID, form.Text)
	if err != nil {
		if errors.Is(err, logic.ErrEmptyInput) {
			ResponseErrorWithMsg(c, CodeInvalidParams, err.Error())
			return
		}
		zap.L().Error("creation submit failed", zap.Error(err))
		ResponseError(c, CodeServerBusy)
		return
	}
	ResponseSuccess(c, creation)
}

// GenerateImage triggers the text-to-image stage.
// @Summary Run the text-to-image stage
// @Tags Creation
// @Produce json
// @Param id path string true "creation id"
// @Success 200 {object} Response "creation with image artifact"
// @Router /api/v1/creations/{id}/image [post]
func (h *CreationHandler) GenerateImage(c *gin.Context) {
	userID, creationID, ok := h.idsFromRequest(c)
	if !ok {
		return
	}

	creation, err := h.svc.GenerateImage(c.Request.Context(), userID, creationID)
	if err != nil {
		h.stageError(c, err)
		return
	}
	ResponseSuccess(c, creation)
}

// GenerateModel triggers the image-to-3D stage. Distinct from the image
// stage on purpose: the user inspects the image first, and a 3D failure is
// retried without paying for image generation again.
// @Summary Run the image-to-3D stage
// @Tags Creation
// @Produce json
// @Param id path string true "creation id"
// @Success 200 {object} Response "creation with 3D artifact"
// @Router /api/v1/creations/{id}/model [post]
func (h *CreationHandler) GenerateModel(c *gin.Context) {
	userID, creationID, ok := h.idsFromRequest(c)
	if !ok {
		return
	}

	creation, err := h.svc.GenerateModel(c.Request.Context(), userID, creationID)
	if err != nil {
		h.stageError(c, err)
		return
	}
	ResponseSuccess(c, creation)
}

// Get returns one creation with its live pipeline stage.
// @Summary Get a creation
// @Tags Creation
// @Produce json
// @Param id path string true "creation id"
// @Success 200 {object} Response "record plus stage"
// @Router /api/v1/creations/{id} [get]
func (h *CreationHandler) Get(c *gin.Context) {
	userID, creationID, ok := h.idsFromRequest(c)
	if !ok {
		return
	}

	creation, st, err := h.svc.Get(userID, creationID)
	if err != nil {
		h.stageError(c, err)
		return
	}
	ResponseSuccess(c, gin.H{
		"creation": creation,
		"stage":    st.Stage.String(),
		"error":    st.Err,
	})
}

// List returns the user's creations, newest first.
// @Summary List creations
// @Tags Creation
// @Produce json
// @Success 200 {object} Response "creations"
// @Router /api/v1/creations [get]
func (h *CreationHandler) List(c *gin.Context) {
	userID, err := getCurrentUserID(c)
	if err != nil {
		ResponseError(c, CodeNeedLogin)
		return
	}
	creations, err := h.svc.List(userID)
	if err != nil {
		zap.L().Error("list creations failed", zap.Error(err))
		ResponseError(c, CodeServerBusy)
		return
	}
	ResponseSuccess(c, creations)
}

// History returns recent cached stage activity with cursor pagination.
// @Summary Recent pipeline activity
// @Tags Creation
// @Produce json
// @Param cursor query string false "pagination cursor"
// @Param page_size query int false "page size"
// @Router /api/v1/creations/history [get]
func (h *CreationHandler) History(c *gin.Context) {
	userID, err := getCurrentUserID(c)
	if err != nil {
		ResponseError(c, CodeNeedLogin)
		return
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	page, err := store.GetStageHistory(userID, c.Query("cursor"), pageSize)
	if err != nil {
		zap.L().Error("stage history failed", zap.Error(err))
		ResponseError(c, CodeServerBusy)
		return
	}
	ResponseSuccess(c, page)
}

func (h *CreationHandler) idsFromRequest(c *gin.Context) (userID, creationID uint64, ok bool) {
	userID, err := getCurrentUserID(c)
	if err != nil {
		ResponseError(c, CodeNeedLogin)
		return 0, 0, false
	}
	creationID, err = strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		ResponseError(c, CodeInvalidParams)
		return 0, 0, false
	}
	return userID, creationID, true
}

// stageError maps orchestrator errors onto response codes; gateway messages
// travel to the client verbatim.
func (h *CreationHandler) stageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, mysql.ErrCreationNotFound), errors.Is(err, logic.ErrNotOwner):
		ResponseError(c, CodeCreationNotFound)
	case errors.Is(err, logic.ErrStageInFlight):
		ResponseError(c, CodeStageConflict)
	case errors.Is(err, logic.ErrNoImage):
		ResponseErrorWithMsg(c, CodeStageOrder, err.Error())
	default:
		ResponseErrorWithMsg(c, CodeGenerationFailed, err.Error())
	}
}
