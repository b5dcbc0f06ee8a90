package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/handler/dto"
	"github.com/yourusername/exam-api/internal/middleware"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
	"github.com/yourusername/exam-api/internal/service"
)

// AssessmentHandler обрабатывает запросы жизненного цикла попыток
type AssessmentHandler struct {
	assessmentService *service.AssessmentService
	testService       *service.TestService
}

// NewAssessmentHandler создает новый обработчик попыток
func NewAssessmentHandler(
	assessmentService *service.AssessmentService,
	testService *service.TestService,
) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentService: assessmentService,
		testService:       testService,
	}
}

// StartAssessmentRequest представляет запрос на начало попытки
type StartAssessmentRequest struct {
	TestCode string `json:"test_code" binding:"required"`
}

// StartAssessment обрабатывает запрос на начало попытки
func (h *AssessmentHandler) StartAssessment(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req StartAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.assessmentService.Start(principal.UserID, req.TestCode)
	if err != nil {
		h.handleAssessmentError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Resumed {
		status = http.StatusOK
	}
	c.JSON(status, dto.NewStartAssessmentResponse(result))
}

// SubmitAssessmentRequest представляет запрос на сдачу попытки.
// Ответы выровнены по порядку mcq-вопросов; null означает "без ответа".
type SubmitAssessmentRequest struct {
	TestCode string `json:"test_code" binding:"required"`
	Answers  []*int `json:"answers"`
}

// SubmitAssessment обрабатывает запрос на сдачу попытки
func (h *AssessmentHandler) SubmitAssessment(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req SubmitAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// null в массиве ответов нормализуется в "без ответа"
	answers := make(entity.IntArray, 0, len(req.Answers))
	for _, a := range req.Answers {
		if a == nil {
			answers = append(answers, entity.UnansweredOption)
		} else {
			answers = append(answers, *a)
		}
	}

	result, err := h.assessmentService.Submit(principal.UserID, req.TestCode, answers)
	if err != nil {
		h.handleAssessmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SubmitAssessmentResponse{Score: result.Score, Total: result.Total})
}

// RunCodeRequest представляет запрос на прогон кода
type RunCodeRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	SourceCode string `json:"source_code" binding:"required"`
	LanguageID int    `json:"language_id" binding:"required"`
}

// RunCode обрабатывает запрос на прогон кода по coding-вопросу
func (h *AssessmentHandler) RunCode(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req RunCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.assessmentService.RunCode(c.Request.Context(), principal.UserID, req.QuestionID, req.SourceCode, req.LanguageID)
	if err != nil {
		h.handleAssessmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRunCodeResponse(result))
}

// GetAssessment возвращает попытку для экрана результатов
func (h *AssessmentHandler) GetAssessment(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	assessmentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assessment ID"})
		return
	}

	detail, err := h.assessmentService.GetDetail(principal, uint(assessmentID))
	if err != nil {
		h.handleAssessmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAssessmentDetailResponse(detail))
}

// GetMyAssessments возвращает все попытки текущего пользователя
func (h *AssessmentHandler) GetMyAssessments(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	assessments, err := h.assessmentService.ListMine(principal.UserID)
	if err != nil {
		h.handleAssessmentError(c, err)
		return
	}

	responses := make([]*dto.AssessmentResponse, 0, len(assessments))
	for i := range assessments {
		responses = append(responses, dto.NewAssessmentResponse(&assessments[i], 0))
	}
	c.JSON(http.StatusOK, gin.H{"assessments": responses})
}

// handleAssessmentError преобразует ошибку сервиса в HTTP-статус.
// Сбои judge и blob-хранилища отображаются в 504/502: клиент должен
// отличать "ваш код неверен" от "инфраструктура недоступна".
func (h *AssessmentHandler) handleAssessmentError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUpstreamTimeout) {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUpstreamUnavailable) {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in AssessmentHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
