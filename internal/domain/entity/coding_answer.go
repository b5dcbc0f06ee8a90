package entity

import (
	"time"
)

// Вердикты выполнения coding-вопроса. CompileError и RuntimeError
// намеренно отделены от WrongAnswer: падение компиляции - не то же
// самое, что неверный вывод.
const (
	VerdictPassed       = "passed"
	VerdictWrongAnswer  = "wrong_answer"
	VerdictCompileError = "compile_error"
	VerdictRuntimeError = "runtime_error"
)

// CodingAnswer представляет последний результат прогона кода студента
// по одному coding-вопросу. Повторные прогоны перезаписывают запись
// (уникальный индекс (assessment_id, question_id)), итоговый score
// попытки они не трогают.
type CodingAnswer struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssessmentID uint      `gorm:"not null;index:idx_coding_answer_attempt_question,unique" json:"assessment_id"`
	QuestionID   uint      `gorm:"not null;index:idx_coding_answer_attempt_question,unique" json:"question_id"`
	SourceCode   string    `gorm:"type:text;not null" json:"source_code"`
	LanguageID   int       `gorm:"not null" json:"language_id"`
	Verdict      string    `gorm:"size:20;not null" json:"verdict"`
	PassedCount  int       `gorm:"not null;default:0" json:"passed_count"`
	TotalCount   int       `gorm:"not null;default:0" json:"total_count"`
	Stdout       string    `gorm:"type:text" json:"stdout"`
	Expected     string    `gorm:"type:text" json:"expected"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (CodingAnswer) TableName() string {
	return "coding_answers"
}

// IsPassed проверяет, пройден ли тест-кейс последним прогоном
func (c *CodingAnswer) IsPassed() bool {
	return c.Verdict == VerdictPassed
}
