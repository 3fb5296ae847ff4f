package controller

import (
	"errors"
	"interview_card_backend/internal/service"
	"interview_card_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// ListCategories godoc
// @Summary Published categories
// @Description Lists the categories that have published question banks
// @Tags questions
// @Produce json
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/categories [get]
func (c *QuestionController) ListCategories(ctx *gin.Context) {
	categories, err := c.QuestionService.ListCategories()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, categories)
}

// StudentQuestions godoc
// @Summary Questions for studying
// @Description Answer-free questions of a published category
// @Tags questions
// @Produce json
// @Security ApiKeyAuth
// @Param category path string true "Category"
// @Success 200 {object} util.Response{data=[]service.StudentQuestion}
// @Failure 404 {object} util.Response
// @Router /api/categories/{category}/questions [get]
func (c *QuestionController) StudentQuestions(ctx *gin.Context) {
	category := ctx.Param("category")
	questions, err := c.QuestionService.StudentQuestions(ctx.Request.Context(), category)
	if err != nil {
		if errors.Is(err, util.ErrNoQuestions) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, questions)
}

// CreateBank godoc
// @Summary Create a question bank
// @Tags banks
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.BankRequest true "Bank details"
// @Success 201 {object} util.Response{data=model.QuestionBank}
// @Failure 400 {object} util.Response
// @Router /api/banks [post]
func (c *QuestionController) CreateBank(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.BankRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	bank, err := c.QuestionService.CreateBank(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, bank)
}

// ListBanks godoc
// @Summary List question banks
// @Tags banks
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/banks [get]
func (c *QuestionController) ListBanks(ctx *gin.Context) {
	page, limit := pagination(ctx)
	banks, total, err := c.QuestionService.ListBanks(page, limit, false)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: banks, Total: total, Page: page, Limit: limit})
}

// GetBank godoc
// @Summary Question bank detail with its questions
// @Tags banks
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Bank ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response
// @Router /api/banks/{id} [get]
func (c *QuestionController) GetBank(ctx *gin.Context) {
	id, err := idParam(ctx)
	if err != nil {
		util.BadRequest(ctx, "invalid bank id")
		return
	}

	bank, err := c.QuestionService.GetBank(id)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	questions, err := c.QuestionService.ListQuestionsByBank(id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"bank": bank, "questions": questions})
}

type PublishRequest struct {
	Published bool `json:"published"`
}

// PublishBank godoc
// @Summary Publish or unpublish a bank
// @Tags banks
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Bank ID"
// @Param body body PublishRequest true "Publish flag"
// @Success 200 {object} util.Response{data=model.QuestionBank}
// @Failure 404 {object} util.Response
// @Router /api/banks/{id}/publish [put]
func (c *QuestionController) PublishBank(ctx *gin.Context) {
	id, err := idParam(ctx)
	if err != nil {
		util.BadRequest(ctx, "invalid bank id")
		return
	}

	var req PublishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	bank, err := c.QuestionService.SetBankPublished(id, req.Published)
	if err != nil {
		if errors.Is(err, util.ErrBankNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, bank)
}

// DeleteBank godoc
// @Summary Delete a bank and its questions
// @Tags banks
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Bank ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/banks/{id} [delete]
func (c *QuestionController) DeleteBank(ctx *gin.Context) {
	id, err := idParam(ctx)
	if err != nil {
		util.BadRequest(ctx, "invalid bank id")
		return
	}

	if err := c.QuestionService.DeleteBank(id); err != nil {
		if errors.Is(err, util.ErrBankNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// CreateQuestion godoc
// @Summary Add a question to a bank
// @Description Rejects content that fails the question model's invariants
// @Tags questions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.QuestionRequest true "Question content"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response "Question id already exists"
// @Router /api/questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuestionService.CreateQuestion(req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrBankNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrDuplicateQuestionID):
			util.Error(ctx, 409, err.Error())
		case errors.Is(err, util.ErrMalformedQuestion):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, question)
}

// UpdateQuestion godoc
// @Summary Update a question
// @Tags questions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Question ID"
// @Param body body service.QuestionRequest true "Question content"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	id, err := idParam(ctx)
	if err != nil {
		util.BadRequest(ctx, "invalid question id")
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuestionService.UpdateQuestion(id, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuestionNotFound), errors.Is(err, util.ErrBankNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrMalformedQuestion):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, question)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags questions
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Question ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	id, err := idParam(ctx)
	if err != nil {
		util.BadRequest(ctx, "invalid question id")
		return
	}

	if err := c.QuestionService.DeleteQuestion(id); err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// ImportBank godoc
// @Summary Import a whole bank from JSON
// @Description Validates every question before anything is stored; one bad question rejects the import
// @Tags banks
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.BankImport true "Bank content"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /api/banks/import [post]
func (c *QuestionController) ImportBank(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var imp service.BankImport
	if err := ctx.ShouldBindJSON(&imp); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	bank, count, err := c.QuestionService.ImportBank(claims.UserID, imp)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, gin.H{"bankId": bank.ID, "imported": count})
}

// ExportBank godoc
// @Summary Export a bank as JSON
// @Description Writes the bank through the storage provider and returns the download URL
// @Tags banks
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Bank ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response
// @Router /api/banks/{id}/export [post]
func (c *QuestionController) ExportBank(ctx *gin.Context) {
	id, err := idParam(ctx)
	if err != nil {
		util.BadRequest(ctx, "invalid bank id")
		return
	}

	url, err := c.QuestionService.ExportBank(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, util.ErrBankNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"url": url})
}

func idParam(ctx *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	return uint(id), err
}

func pagination(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
