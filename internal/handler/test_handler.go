package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/exam-api/internal/handler/dto"
	"github.com/yourusername/exam-api/internal/middleware"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
	"github.com/yourusername/exam-api/internal/service"
)

// TestHandler обрабатывает запросы, связанные с тестами и лидербордом
type TestHandler struct {
	testService        *service.TestService
	leaderboardService *service.LeaderboardService
}

// NewTestHandler создает новый обработчик тестов
func NewTestHandler(
	testService *service.TestService,
	leaderboardService *service.LeaderboardService,
) *TestHandler {
	return &TestHandler{
		testService:        testService,
		leaderboardService: leaderboardService,
	}
}

// CreateTest обрабатывает запрос на создание теста (только admin)
func (h *TestHandler) CreateTest(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req service.CreateTestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	test, err := h.testService.Create(principal, req)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewTestResponse(test, true, true))
}

// JoinTest возвращает тест по коду для подключения студента.
// Вопросы отдаются сразу, но без правильных ответов и без ссылок
// на файлы тест-кейсов.
func (h *TestHandler) JoinTest(c *gin.Context) {
	test, err := h.testService.Join(c.Param("testCode"))
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTestResponse(test, true, false))
}

// GetLeaderboard возвращает лидерборд теста.
// Параметр format выбирает представление: json (по умолчанию), csv, xlsx.
func (h *TestHandler) GetLeaderboard(c *gin.Context) {
	testID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid test ID"})
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		leaderboard, err := h.leaderboardService.Get(uint(testID))
		if err != nil {
			h.handleTestError(c, err)
			return
		}
		c.JSON(http.StatusOK, leaderboard)

	case "csv":
		data, err := h.leaderboardService.ExportCSV(uint(testID))
		if err != nil {
			h.handleTestError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=leaderboard_test_%d.csv", testID))
		c.Data(http.StatusOK, "text/csv", data)

	case "xlsx":
		data, err := h.leaderboardService.ExportExcel(uint(testID))
		if err != nil {
			h.handleTestError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=leaderboard_test_%d.xlsx", testID))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported format, use json, csv or xlsx"})
	}
}

// handleTestError преобразует ошибку сервиса в HTTP-статус
func (h *TestHandler) handleTestError(c *gin.Context, err error) {
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
	} else {
		log.Printf("ERROR: Internal server error in TestHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
