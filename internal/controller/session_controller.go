package controller

import (
	"errors"
	"interview_card_backend/internal/service"
	"interview_card_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	SessionService *service.SessionService
}

func NewSessionController(sessionService *service.SessionService) *SessionController {
	return &SessionController{SessionService: sessionService}
}

// StartSession godoc
// @Summary Start a study session
// @Description Freezes a shuffled question order for the category in flip or choice mode
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.StartSessionRequest true "Session parameters"
// @Success 201 {object} util.Response{data=model.StudySession}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response "No questions in category"
// @Router /api/sessions [post]
func (c *SessionController) StartSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.SessionService.StartSession(claims.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrNoQuestions) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, session)
}

// ListSessions godoc
// @Summary List own study sessions
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Param status query string false "Filter by status"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/sessions [get]
func (c *SessionController) ListSessions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := pagination(ctx)
	sessions, total, err := c.SessionService.ListSessions(claims.UserID, page, limit, ctx.Query("status"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: sessions, Total: total, Page: page, Limit: limit})
}

// GetSession godoc
// @Summary Session detail
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} util.Response{data=model.StudySession}
// @Failure 404 {object} util.Response
// @Router /api/sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	session, err := c.SessionService.GetSession(claims.UserID, ctx.Param("id"))
	if err != nil {
		c.sessionError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// CurrentQuestion godoc
// @Summary Question at the session cursor
// @Description Options come pre-arranged for this session; correct answers stay hidden
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} util.Response{data=service.SessionQuestion}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "Session not active or exhausted"
// @Router /api/sessions/{id}/question [get]
func (c *SessionController) CurrentQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	question, err := c.SessionService.CurrentQuestion(claims.UserID, ctx.Param("id"))
	if err != nil {
		c.sessionError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

type SubmitAnswerRequest struct {
	SelectedAnswers []int `json:"selectedAnswers"`
}

// SubmitAnswer godoc
// @Summary Submit a choice-mode answer
// @Description Invalid submissions return every validation message and do not advance the session
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Param body body SubmitAnswerRequest true "Selected option indices"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "Wrong mode or session not active"
// @Router /api/sessions/{id}/answer [post]
func (c *SessionController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.SessionService.SubmitAnswer(claims.UserID, ctx.Param("id"), req.SelectedAnswers)
	if err != nil {
		c.sessionError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// RevealAnswer godoc
// @Summary Flip the current card
// @Description Returns the answer side of the current flip card without advancing
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} util.Response{data=service.AnswerReveal}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/sessions/{id}/reveal [get]
func (c *SessionController) RevealAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	reveal, err := c.SessionService.RevealAnswer(claims.UserID, ctx.Param("id"))
	if err != nil {
		c.sessionError(ctx, err)
		return
	}
	util.Success(ctx, reveal)
}

type SelfMarkRequest struct {
	KnewIt bool `json:"knewIt"`
}

// SelfMark godoc
// @Summary Self-assess the current flip card
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Param body body SelfMarkRequest true "Self assessment"
// @Success 200 {object} util.Response{data=model.StudySession}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/sessions/{id}/mark [post]
func (c *SessionController) SelfMark(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SelfMarkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.SessionService.SelfMark(claims.UserID, ctx.Param("id"), req.KnewIt)
	if err != nil {
		c.sessionError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// FinishSession godoc
// @Summary Finish a session
// @Description Closes the session and returns its summary with all recorded answers
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} util.Response{data=service.SessionSummary}
// @Failure 404 {object} util.Response
// @Router /api/sessions/{id}/finish [post]
func (c *SessionController) FinishSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	summary, err := c.SessionService.FinishSession(claims.UserID, ctx.Param("id"))
	if err != nil {
		c.sessionError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

func (c *SessionController) sessionError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSessionNotFound), errors.Is(err, util.ErrQuestionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrSessionNotActive), errors.Is(err, util.ErrSessionExhausted), errors.Is(err, util.ErrWrongSessionMode):
		util.Error(ctx, 409, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
