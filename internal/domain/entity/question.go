package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Типы вопросов. Закрытое множество: скоринг делает исчерпывающий
// switch по типу, новый тип вопроса = изменение на этапе компиляции.
const (
	QuestionTypeMCQ    = "mcq"
	QuestionTypeCoding = "coding"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Question представляет вопрос теста.
// Вариант mcq использует Options/CorrectOption, вариант coding -
// ссылки на файлы тест-кейса (InputURL, ExpectedOutputURL).
type Question struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	TestID   uint   `gorm:"not null;index" json:"test_id"`
	Position int    `gorm:"not null;default:0" json:"position"`
	Type     string `gorm:"size:20;not null;default:'mcq'" json:"type"`
	Text     string `gorm:"size:2000;not null" json:"text"`

	// Поля варианта mcq
	Options       StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectOption int         `gorm:"not null;default:-1" json:"-"` // Скрыто от клиента

	// Поля варианта coding: непрозрачные ссылки на blob-хранилище
	InputURL          string `gorm:"size:500" json:"-"`
	ExpectedOutputURL string `gorm:"size:500" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsMCQ проверяет, является ли вопрос вопросом с выбором варианта
func (q *Question) IsMCQ() bool {
	return q.Type == QuestionTypeMCQ
}

// IsCoding проверяет, является ли вопрос задачей на программирование
func (q *Question) IsCoding() bool {
	return q.Type == QuestionTypeCoding
}

// IsCorrect проверяет, является ли выбранный вариант правильным
func (q *Question) IsCorrect(selectedOption int) bool {
	return selectedOption == q.CorrectOption
}

// IsValidOption проверяет, является ли выбранный вариант допустимым
func (q *Question) IsValidOption(selectedOption int) bool {
	return selectedOption >= 0 && selectedOption < len(q.Options)
}

// OptionsCount возвращает количество вариантов ответа
func (q *Question) OptionsCount() int {
	return len(q.Options)
}
