package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// CreateQuestionInput - один вопрос в запросе создания теста
type CreateQuestionInput struct {
	Type              string   `json:"type"`
	Text              string   `json:"text"`
	Options           []string `json:"options"`
	CorrectOption     *int     `json:"correct_option"`
	InputURL          string   `json:"input_url"`
	ExpectedOutputURL string   `json:"expected_output_url"`
}

// CreateTestInput - запрос на создание теста с вопросами.
// StartTime/EndTime приходят в RFC3339, TestCode уникален глобально.
type CreateTestInput struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	TestCode    string                `json:"test_code"`
	Duration    int                   `json:"duration"`
	StartTime   string                `json:"start_time"`
	EndTime     string                `json:"end_time"`
	Questions   []CreateQuestionInput `json:"questions"`
}

// TestService управляет созданием тестов и подключением к ним по коду
type TestService struct {
	testRepo repository.TestRepository
	clock    Clock
}

// NewTestService создает новый сервис тестов
func NewTestService(testRepo repository.TestRepository, clock Clock) *TestService {
	return &TestService{
		testRepo: testRepo,
		clock:    clock,
	}
}

// Create создает тест с вопросами. Вся валидация выполняется до записи:
// тест либо сохраняется целиком, либо не сохраняется вовсе.
func (s *TestService) Create(principal Principal, input CreateTestInput) (*entity.Test, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can create tests", apperrors.ErrForbidden)
	}

	test, err := buildTest(principal.UserID, input)
	if err != nil {
		return nil, err
	}

	// Дубликат test_code ловится уникальным индексом, не предварительной
	// проверкой: конкурентные создания с одним кодом решает база
	if err := s.testRepo.Create(test); err != nil {
		return nil, err
	}

	log.Printf("[TestService] Тест %q создан администратором #%d (%d вопросов)", test.TestCode, principal.UserID, len(test.Questions))
	return test, nil
}

// Join возвращает тест по коду для подключения студента.
// Тест вне окна доступности не отдается даже на просмотр.
func (s *TestService) Join(testCode string) (*entity.Test, error) {
	test, err := s.testRepo.GetByCode(testCode)
	if err != nil {
		return nil, err
	}

	if !test.IsLive(s.clock.Now()) {
		return nil, fmt.Errorf("%w: test is not currently live", apperrors.ErrForbidden)
	}

	return test, nil
}

// GetByID возвращает тест по ID (для экрана результатов)
func (s *TestService) GetByID(id uint) (*entity.Test, error) {
	return s.testRepo.GetByID(id)
}

// buildTest валидирует вход и собирает сущность теста.
// Position вопросам назначается по порядку следования в запросе.
func buildTest(createdBy uint, input CreateTestInput) (*entity.Test, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(input.TestCode) == "" {
		return nil, fmt.Errorf("%w: test code is required", apperrors.ErrValidation)
	}
	if input.Duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", apperrors.ErrValidation)
	}

	startTime, err := parseRFC3339(input.StartTime, "start_time")
	if err != nil {
		return nil, err
	}
	endTime, err := parseRFC3339(input.EndTime, "end_time")
	if err != nil {
		return nil, err
	}
	if !endTime.After(startTime) {
		return nil, fmt.Errorf("%w: end_time must be after start_time", apperrors.ErrValidation)
	}

	if len(input.Questions) == 0 {
		return nil, fmt.Errorf("%w: at least one question is required", apperrors.ErrValidation)
	}

	questions := make([]entity.Question, 0, len(input.Questions))
	for i, q := range input.Questions {
		question, err := buildQuestion(i, q)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *question)
	}

	return &entity.Test{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		TestCode:    strings.TrimSpace(input.TestCode),
		CreatedBy:   createdBy,
		Duration:    input.Duration,
		StartTime:   startTime,
		EndTime:     endTime,
		Questions:   questions,
	}, nil
}

func parseRFC3339(value, field string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be RFC3339", apperrors.ErrValidation, field)
	}
	return parsed, nil
}

// buildQuestion валидирует один вопрос по его типу
func buildQuestion(position int, input CreateQuestionInput) (*entity.Question, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("%w: question %d: text is required", apperrors.ErrValidation, position+1)
	}

	question := &entity.Question{
		Position: position,
		Type:     input.Type,
		Text:     input.Text,
		Options:  entity.StringArray{},
	}

	switch input.Type {
	case entity.QuestionTypeMCQ:
		if len(input.Options) < 2 {
			return nil, fmt.Errorf("%w: question %d: mcq requires at least 2 options", apperrors.ErrValidation, position+1)
		}
		if input.CorrectOption == nil {
			return nil, fmt.Errorf("%w: question %d: correct_option is required", apperrors.ErrValidation, position+1)
		}
		if *input.CorrectOption < 0 || *input.CorrectOption >= len(input.Options) {
			return nil, fmt.Errorf("%w: question %d: correct_option out of range", apperrors.ErrValidation, position+1)
		}
		question.Options = entity.StringArray(input.Options)
		question.CorrectOption = *input.CorrectOption

	case entity.QuestionTypeCoding:
		if strings.TrimSpace(input.InputURL) == "" || strings.TrimSpace(input.ExpectedOutputURL) == "" {
			return nil, fmt.Errorf("%w: question %d: coding requires input_url and expected_output_url", apperrors.ErrValidation, position+1)
		}
		question.CorrectOption = -1
		question.InputURL = input.InputURL
		question.ExpectedOutputURL = input.ExpectedOutputURL

	default:
		return nil, fmt.Errorf("%w: question %d: unknown type %q", apperrors.ErrValidation, position+1, input.Type)
	}

	return question, nil
}
