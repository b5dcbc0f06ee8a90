package entity

import (
	"time"
)

// Test представляет тест с фиксированным окном доступности.
// Окно [StartTime, EndTime] проверяется включительно с обеих сторон;
// Duration (в минутах) задает персональный дедлайн каждой попытки.
type Test struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"size:1000;not null;default:''" json:"description"`
	TestCode    string     `gorm:"size:50;not null;uniqueIndex" json:"test_code"`
	CreatedBy   uint       `gorm:"not null;index" json:"created_by"`
	Duration    int        `gorm:"not null" json:"duration"` // в минутах
	StartTime   time.Time  `gorm:"not null" json:"start_time"`
	EndTime     time.Time  `gorm:"not null" json:"end_time"`
	Questions   []Question `gorm:"foreignKey:TestID" json:"questions,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Test) TableName() string {
	return "tests"
}

// IsLive проверяет, открыт ли тест в момент now (границы окна включительно)
func (t *Test) IsLive(now time.Time) bool {
	return !now.Before(t.StartTime) && !now.After(t.EndTime)
}

// AttemptDeadline возвращает дедлайн попытки, начатой в startedAt
func (t *Test) AttemptDeadline(startedAt time.Time) time.Time {
	return startedAt.Add(time.Duration(t.Duration) * time.Minute)
}

// MCQCount возвращает количество вопросов с выбором варианта.
// Это максимум итогового балла: coding-вопросы в score не входят.
func (t *Test) MCQCount() int {
	count := 0
	for i := range t.Questions {
		if t.Questions[i].IsMCQ() {
			count++
		}
	}
	return count
}

// QuestionByID ищет вопрос теста по ID. Возвращает nil, если не найден.
func (t *Test) QuestionByID(questionID uint) *Question {
	for i := range t.Questions {
		if t.Questions[i].ID == questionID {
			return &t.Questions[i]
		}
	}
	return nil
}
