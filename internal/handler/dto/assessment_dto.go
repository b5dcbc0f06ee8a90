package dto

import (
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/service"
)

// CodingAnswerResponse представляет результат прогона кода
type CodingAnswerResponse struct {
	QuestionID  uint      `json:"question_id"`
	LanguageID  int       `json:"language_id"`
	Verdict     string    `json:"verdict"`
	PassedCount int       `json:"passed_count"`
	TotalCount  int       `json:"total_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AssessmentResponse представляет попытку в формате для ответа клиенту
type AssessmentResponse struct {
	ID            uint                   `json:"id"`
	UserID        uint                   `json:"user_id"`
	TestID        uint                   `json:"test_id"`
	StartedAt     time.Time              `json:"started_at"`
	Deadline      *time.Time             `json:"deadline,omitempty"`
	SubmittedAt   *time.Time             `json:"submitted_at,omitempty"`
	Completed     bool                   `json:"completed"`
	UserAnswers   entity.IntArray        `json:"user_answers,omitempty"`
	Score         int                    `json:"score"`
	TimeTakenSec  *int                   `json:"time_taken_sec,omitempty"`
	CodingAnswers []CodingAnswerResponse `json:"coding_answers,omitempty"`
}

// StartAssessmentResponse - ответ на начало попытки: попытка плюс
// вопросы теста без правильных ответов
type StartAssessmentResponse struct {
	Assessment *AssessmentResponse `json:"assessment"`
	Test       *TestResponse       `json:"test"`
	Resumed    bool                `json:"resumed"`
}

// SubmitAssessmentResponse - ответ на сдачу попытки
type SubmitAssessmentResponse struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// RunCodeResponse - ответ на прогон кода
type RunCodeResponse struct {
	Verdict       string `json:"verdict"`
	Passed        bool   `json:"passed"`
	PassedCount   int    `json:"passed_count"`
	TotalCount    int    `json:"total_count"`
	Stdout        string `json:"stdout,omitempty"`
	Expected      string `json:"expected,omitempty"`
	CompileOutput string `json:"compile_output,omitempty"`
	Stderr        string `json:"stderr,omitempty"`
}

// AssessmentDetailResponse - попытка вместе с тестом для экрана результатов
type AssessmentDetailResponse struct {
	Assessment *AssessmentResponse `json:"assessment"`
	Test       *TestResponse       `json:"test"`
}

// NewAssessmentResponse создает DTO для попытки.
// durationMinutes нужен для вычисления дедлайна незавершенной попытки.
func NewAssessmentResponse(a *entity.Assessment, durationMinutes int) *AssessmentResponse {
	resp := &AssessmentResponse{
		ID:           a.ID,
		UserID:       a.UserID,
		TestID:       a.TestID,
		StartedAt:    a.StartedAt,
		SubmittedAt:  a.SubmittedAt,
		Completed:    a.Completed,
		UserAnswers:  a.UserAnswers,
		Score:        a.Score,
		TimeTakenSec: a.TimeTakenSec,
	}
	if !a.Completed && durationMinutes > 0 {
		deadline := a.Deadline(durationMinutes)
		resp.Deadline = &deadline
	}
	for i := range a.CodingAnswers {
		ca := &a.CodingAnswers[i]
		resp.CodingAnswers = append(resp.CodingAnswers, CodingAnswerResponse{
			QuestionID:  ca.QuestionID,
			LanguageID:  ca.LanguageID,
			Verdict:     ca.Verdict,
			PassedCount: ca.PassedCount,
			TotalCount:  ca.TotalCount,
			UpdatedAt:   ca.UpdatedAt,
		})
	}
	return resp
}

// NewStartAssessmentResponse создает ответ на начало попытки
func NewStartAssessmentResponse(result *service.StartResult) *StartAssessmentResponse {
	return &StartAssessmentResponse{
		Assessment: NewAssessmentResponse(result.Assessment, result.Test.Duration),
		Test:       NewTestResponse(result.Test, true, false),
		Resumed:    result.Resumed,
	}
}

// NewRunCodeResponse создает ответ на прогон кода
func NewRunCodeResponse(result *service.RunCodeResult) *RunCodeResponse {
	return &RunCodeResponse{
		Verdict:       result.Verdict,
		Passed:        result.Passed,
		PassedCount:   result.PassedCount,
		TotalCount:    result.TotalCount,
		Stdout:        result.Stdout,
		Expected:      result.Expected,
		CompileOutput: result.CompileOutput,
		Stderr:        result.Stderr,
	}
}

// NewAssessmentDetailResponse создает ответ для экрана результатов
func NewAssessmentDetailResponse(detail *service.AssessmentDetail) *AssessmentDetailResponse {
	return &AssessmentDetailResponse{
		Assessment: NewAssessmentResponse(detail.Assessment, detail.Test.Duration),
		Test:       NewTestResponse(detail.Test, true, detail.RevealAnswers),
	}
}
