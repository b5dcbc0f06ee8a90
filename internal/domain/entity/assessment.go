package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// UnansweredOption - значение элемента UserAnswers для вопроса без ответа.
// JSON null из запроса нормализуется в это значение, сравнение с
// CorrectOption для него всегда ложно.
const UnansweredOption = -1

// IntArray - пользовательский тип для хранения массива индексов в JSONB
type IntArray []int

// Scan реализует интерфейс sql.Scanner для IntArray
func (a *IntArray) Scan(value interface{}) error {
	if value == nil {
		*a = IntArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*a = IntArray{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Value реализует интерфейс driver.Valuer для IntArray
func (a IntArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// At возвращает элемент по индексу или UnansweredOption за пределами массива
func (a IntArray) At(i int) int {
	if i < 0 || i >= len(a) {
		return UnansweredOption
	}
	return a[i]
}

// Assessment представляет одну попытку пользователя пройти один тест.
// Уникальный индекс (user_id, test_id) - единственный механизм, который
// гарантирует не более одной попытки при конкурентных Start.
type Assessment struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index:idx_assessment_user_test,unique" json:"user_id"`
	TestID        uint           `gorm:"not null;index:idx_assessment_user_test,unique" json:"test_id"`
	StartedAt     time.Time      `gorm:"not null" json:"started_at"`
	SubmittedAt   *time.Time     `json:"submitted_at,omitempty"`
	Completed     bool           `gorm:"not null;default:false" json:"completed"`
	UserAnswers   IntArray       `gorm:"type:jsonb;not null" json:"user_answers"`
	Score         int            `gorm:"not null;default:0" json:"score"`
	TimeTakenSec  *int           `json:"time_taken_sec,omitempty"`
	CodingAnswers []CodingAnswer `gorm:"foreignKey:AssessmentID" json:"coding_answers,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Assessment) TableName() string {
	return "assessments"
}

// Deadline возвращает момент, после которого Submit отклоняется
func (a *Assessment) Deadline(durationMinutes int) time.Time {
	return a.StartedAt.Add(time.Duration(durationMinutes) * time.Minute)
}

// DeadlineExceeded проверяет, истек ли дедлайн попытки к моменту now
func (a *Assessment) DeadlineExceeded(now time.Time, durationMinutes int) bool {
	return now.After(a.Deadline(durationMinutes))
}
