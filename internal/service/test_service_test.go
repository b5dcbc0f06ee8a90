package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// ============================================================================
// Тесты для TestService
// ============================================================================

func intPtr(v int) *int {
	return &v
}

func validCreateInput() CreateTestInput {
	return CreateTestInput{
		Title:     "Алгоритмы, неделя 3",
		TestCode:  "ALG-W3",
		Duration:  15,
		StartTime: "2026-03-01T10:00:00Z",
		EndTime:   "2026-03-01T11:00:00Z",
		Questions: []CreateQuestionInput{
			{Type: entity.QuestionTypeMCQ, Text: "2+2?", Options: []string{"3", "4"}, CorrectOption: intPtr(1)},
			{Type: entity.QuestionTypeCoding, Text: "Сумма чисел", InputURL: "https://blob.example.com/in.txt", ExpectedOutputURL: "https://blob.example.com/out.txt"},
		},
	}
}

func TestTestService_Create_Success(t *testing.T) {
	// Arrange
	mockTestRepo := new(MockTestRepoForAssessment)
	mockTestRepo.On("Create", mock.MatchedBy(func(test *entity.Test) bool {
		return test.TestCode == "ALG-W3" &&
			len(test.Questions) == 2 &&
			test.Questions[0].Position == 0 &&
			test.Questions[1].Position == 1 &&
			test.CreatedBy == 7
	})).Return(nil)

	svc := NewTestService(mockTestRepo, fixedClock{testWindowStart})
	admin := Principal{UserID: 7, Role: entity.RoleAdmin}

	// Act
	test, err := svc.Create(admin, validCreateInput())

	// Assert
	require.NoError(t, err, "Создание валидного теста должно быть успешным")
	assert.Equal(t, 15, test.Duration)
	assert.Equal(t, 1, test.Questions[0].CorrectOption)
	mockTestRepo.AssertExpectations(t)
}

func TestTestService_Create_NonAdminForbidden(t *testing.T) {
	// Arrange
	mockTestRepo := new(MockTestRepoForAssessment)
	svc := NewTestService(mockTestRepo, fixedClock{testWindowStart})
	student := Principal{UserID: 42, Role: entity.RoleUser}

	// Act
	_, err := svc.Create(student, validCreateInput())

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	mockTestRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestTestService_Create_ValidationErrors(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*CreateTestInput)
	}{
		{"пустой заголовок", func(in *CreateTestInput) { in.Title = "  " }},
		{"пустой код", func(in *CreateTestInput) { in.TestCode = "" }},
		{"нулевая длительность", func(in *CreateTestInput) { in.Duration = 0 }},
		{"отрицательная длительность", func(in *CreateTestInput) { in.Duration = -5 }},
		{"окно нулевой длины", func(in *CreateTestInput) { in.EndTime = in.StartTime }},
		{"конец раньше начала", func(in *CreateTestInput) {
			in.StartTime = "2026-03-01T11:00:00Z"
			in.EndTime = "2026-03-01T10:00:00Z"
		}},
		{"невалидное время", func(in *CreateTestInput) { in.StartTime = "01.03.2026 10:00" }},
		{"без вопросов", func(in *CreateTestInput) { in.Questions = nil }},
		{"mcq с одним вариантом", func(in *CreateTestInput) {
			in.Questions[0].Options = []string{"4"}
		}},
		{"mcq без correct_option", func(in *CreateTestInput) {
			in.Questions[0].CorrectOption = nil
		}},
		{"correct_option за пределами вариантов", func(in *CreateTestInput) {
			in.Questions[0].CorrectOption = intPtr(2)
		}},
		{"coding без input_url", func(in *CreateTestInput) {
			in.Questions[1].InputURL = ""
		}},
		{"неизвестный тип вопроса", func(in *CreateTestInput) {
			in.Questions[0].Type = "essay"
		}},
		{"вопрос без текста", func(in *CreateTestInput) {
			in.Questions[0].Text = ""
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockTestRepo := new(MockTestRepoForAssessment)
			svc := NewTestService(mockTestRepo, fixedClock{testWindowStart})
			admin := Principal{UserID: 7, Role: entity.RoleAdmin}

			input := validCreateInput()
			tc.mutate(&input)

			_, err := svc.Create(admin, input)

			assert.ErrorIs(t, err, apperrors.ErrValidation)
			mockTestRepo.AssertNotCalled(t, "Create", mock.Anything)
		})
	}
}

func TestTestService_Create_DuplicateCode(t *testing.T) {
	// Тест: дубликат test_code ловится уникальным индексом в базе
	mockTestRepo := new(MockTestRepoForAssessment)
	mockTestRepo.On("Create", mock.Anything).Return(apperrors.ErrConflict)

	svc := NewTestService(mockTestRepo, fixedClock{testWindowStart})
	admin := Principal{UserID: 7, Role: entity.RoleAdmin}

	// Act
	_, err := svc.Create(admin, validCreateInput())

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestTestService_Join_LiveTest(t *testing.T) {
	// Arrange
	mockTestRepo := new(MockTestRepoForAssessment)
	mockTestRepo.On("GetByCode", "ALG-W3").Return(liveTest(), nil)

	svc := NewTestService(mockTestRepo, fixedClock{testWindowStart.Add(30 * time.Minute)})

	// Act
	test, err := svc.Join("ALG-W3")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "ALG-W3", test.TestCode)
}

func TestTestService_Join_OutsideWindow(t *testing.T) {
	// Arrange
	mockTestRepo := new(MockTestRepoForAssessment)
	mockTestRepo.On("GetByCode", "ALG-W3").Return(liveTest(), nil)

	svc := NewTestService(mockTestRepo, fixedClock{testWindowStart.Add(2 * time.Hour)})

	// Act
	_, err := svc.Join("ALG-W3")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrForbidden, "Закрытый тест не отдается на подключение")
}

func TestTestService_Join_UnknownCode(t *testing.T) {
	// Arrange
	mockTestRepo := new(MockTestRepoForAssessment)
	mockTestRepo.On("GetByCode", "NOPE").Return(nil, apperrors.ErrNotFound)

	svc := NewTestService(mockTestRepo, fixedClock{testWindowStart})

	// Act
	_, err := svc.Join("NOPE")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
