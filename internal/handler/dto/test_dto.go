package dto

import (
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// QuestionResponse представляет вопрос в формате для ответа клиенту.
// CorrectOption заполняется только для завершенных попыток и администраторов,
// ссылки тест-кейсов coding-вопросов клиенту не отдаются никогда.
type QuestionResponse struct {
	ID            uint     `json:"id"`
	Position      int      `json:"position"`
	Type          string   `json:"type"`
	Text          string   `json:"text"`
	Options       []string `json:"options,omitempty"`
	CorrectOption *int     `json:"correct_option,omitempty"`
}

// TestResponse представляет тест в формате для ответа клиенту
type TestResponse struct {
	ID            uint               `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	TestCode      string             `json:"test_code"`
	Duration      int                `json:"duration"`
	StartTime     time.Time          `json:"start_time"`
	EndTime       time.Time          `json:"end_time"`
	QuestionCount int                `json:"question_count"`
	Questions     []QuestionResponse `json:"questions,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// NewQuestionResponse создает DTO для вопроса.
// revealAnswers управляет выдачей правильного варианта.
func NewQuestionResponse(q *entity.Question, revealAnswers bool) QuestionResponse {
	resp := QuestionResponse{
		ID:       q.ID,
		Position: q.Position,
		Type:     q.Type,
		Text:     q.Text,
		Options:  q.Options,
	}
	if revealAnswers && q.IsMCQ() {
		correct := q.CorrectOption
		resp.CorrectOption = &correct
	}
	return resp
}

// NewTestResponse создает DTO для теста
func NewTestResponse(test *entity.Test, includeQuestions, revealAnswers bool) *TestResponse {
	resp := &TestResponse{
		ID:            test.ID,
		Title:         test.Title,
		Description:   test.Description,
		TestCode:      test.TestCode,
		Duration:      test.Duration,
		StartTime:     test.StartTime,
		EndTime:       test.EndTime,
		QuestionCount: len(test.Questions),
		CreatedAt:     test.CreatedAt,
	}
	if includeQuestions {
		resp.Questions = make([]QuestionResponse, 0, len(test.Questions))
		for i := range test.Questions {
			resp.Questions = append(resp.Questions, NewQuestionResponse(&test.Questions[i], revealAnswers))
		}
	}
	return resp
}
