package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
	"github.com/yourusername/exam-api/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ============================================================================
// Моки для TestHandler
// ============================================================================

type MockTestRepoForHandler struct {
	mock.Mock
}

func (m *MockTestRepoForHandler) Create(test *entity.Test) error {
	args := m.Called(test)
	return args.Error(0)
}

func (m *MockTestRepoForHandler) GetByID(id uint) (*entity.Test, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Test), args.Error(1)
}

func (m *MockTestRepoForHandler) GetByCode(code string) (*entity.Test, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Test), args.Error(1)
}

func (m *MockTestRepoForHandler) GetByQuestionID(questionID uint) (*entity.Test, error) {
	args := m.Called(questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Test), args.Error(1)
}

func (m *MockTestRepoForHandler) List(limit, offset int) ([]entity.Test, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Test), args.Error(1)
}

// handlerClock возвращает фиксированный момент времени
type handlerClock struct {
	now time.Time
}

func (c handlerClock) Now() time.Time {
	return c.now
}

var joinWindowStart = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func joinableTest() *entity.Test {
	return &entity.Test{
		ID:        1,
		Title:     "Алгоритмы, неделя 3",
		TestCode:  "ALG-W3",
		Duration:  15,
		StartTime: joinWindowStart,
		EndTime:   joinWindowStart.Add(1 * time.Hour),
		Questions: []entity.Question{
			{ID: 10, TestID: 1, Position: 0, Type: entity.QuestionTypeMCQ, Text: "2+2?", Options: entity.StringArray{"3", "4"}, CorrectOption: 1},
			{ID: 11, TestID: 1, Position: 1, Type: entity.QuestionTypeCoding, Text: "Сумма чисел", InputURL: "https://blob.example.com/in.txt", ExpectedOutputURL: "https://blob.example.com/out.txt"},
		},
	}
}

// ============================================================================
// Тесты JoinTest
// ============================================================================

func TestTestHandler_JoinTest_ReturnsQuestionsWithoutAnswers(t *testing.T) {
	// Тест: подключение по коду отдает вопросы целиком (текст, варианты),
	// но без правильных ответов и без ссылок на файлы тест-кейсов
	mockTestRepo := new(MockTestRepoForHandler)
	mockTestRepo.On("GetByCode", "ALG-W3").Return(joinableTest(), nil)

	testService := service.NewTestService(mockTestRepo, handlerClock{joinWindowStart.Add(30 * time.Minute)})
	handler := NewTestHandler(testService, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/test/join/ALG-W3", nil)
	c.Params = gin.Params{{Key: "testCode", Value: "ALG-W3"}}

	// Act
	handler.JoinTest(c)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Response body should be valid JSON: %s", w.Body.String())

	assert.Equal(t, "ALG-W3", resp["test_code"])
	assert.Equal(t, float64(2), resp["question_count"])

	questions, ok := resp["questions"].([]interface{})
	require.True(t, ok, "Ответ должен содержать массив questions")
	require.Len(t, questions, 2)

	mcq := questions[0].(map[string]interface{})
	assert.Equal(t, "2+2?", mcq["text"])
	assert.Len(t, mcq["options"], 2)
	assert.NotContains(t, mcq, "correct_option", "Правильный ответ не должен утекать до завершения попытки")

	coding := questions[1].(map[string]interface{})
	assert.Equal(t, "coding", coding["type"])
	assert.NotContains(t, coding, "input_url")
	assert.NotContains(t, coding, "expected_output_url")
	assert.NotContains(t, w.Body.String(), "blob.example.com", "Ссылки тест-кейсов не должны попадать в ответ")
}

func TestTestHandler_JoinTest_OutsideWindow(t *testing.T) {
	// Arrange: тест уже закрыт
	mockTestRepo := new(MockTestRepoForHandler)
	mockTestRepo.On("GetByCode", "ALG-W3").Return(joinableTest(), nil)

	testService := service.NewTestService(mockTestRepo, handlerClock{joinWindowStart.Add(2 * time.Hour)})
	handler := NewTestHandler(testService, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/test/join/ALG-W3", nil)
	c.Params = gin.Params{{Key: "testCode", Value: "ALG-W3"}}

	// Act
	handler.JoinTest(c)

	// Assert
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTestHandler_JoinTest_UnknownCode(t *testing.T) {
	// Arrange
	mockTestRepo := new(MockTestRepoForHandler)
	mockTestRepo.On("GetByCode", "NOPE").Return(nil, apperrors.ErrNotFound)

	testService := service.NewTestService(mockTestRepo, handlerClock{joinWindowStart})
	handler := NewTestHandler(testService, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/test/join/NOPE", nil)
	c.Params = gin.Params{{Key: "testCode", Value: "NOPE"}}

	// Act
	handler.JoinTest(c)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}
