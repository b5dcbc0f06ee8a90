package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestion_IsCorrect_CorrectAnswer(t *testing.T) {
	// Arrange
	question := &Question{
		ID:            1,
		TestID:        1,
		Type:          QuestionTypeMCQ,
		Text:          "Какой тип используется для индекса варианта?",
		Options:       StringArray{"string", "int", "float", "bool"},
		CorrectOption: 1,
	}

	// Act & Assert
	assert.True(t, question.IsCorrect(1), "IsCorrect должен вернуть true для правильного ответа")
}

func TestQuestion_IsCorrect_IncorrectAnswer(t *testing.T) {
	// Arrange
	question := &Question{
		ID:            1,
		CorrectOption: 2,
	}

	// Act & Assert
	assert.False(t, question.IsCorrect(0), "IsCorrect должен вернуть false для неправильного ответа")
	assert.False(t, question.IsCorrect(1), "IsCorrect должен вернуть false для неправильного ответа")
	assert.False(t, question.IsCorrect(UnansweredOption), "отсутствующий ответ не считается правильным")
}

func TestQuestion_IsValidOption(t *testing.T) {
	// Arrange
	question := &Question{
		Options: StringArray{"A", "B", "C", "D"},
	}

	// Act & Assert: валидные опции
	assert.True(t, question.IsValidOption(0), "Индекс 0 должен быть валидным")
	assert.True(t, question.IsValidOption(3), "Индекс 3 должен быть валидным")

	// Assert: невалидные опции
	assert.False(t, question.IsValidOption(-1), "Отрицательный индекс должен быть невалидным")
	assert.False(t, question.IsValidOption(4), "Индекс вне диапазона должен быть невалидным")
}

func TestQuestion_TypePredicates(t *testing.T) {
	// Arrange
	mcq := &Question{Type: QuestionTypeMCQ}
	coding := &Question{Type: QuestionTypeCoding}

	// Act & Assert
	assert.True(t, mcq.IsMCQ())
	assert.False(t, mcq.IsCoding())
	assert.True(t, coding.IsCoding())
	assert.False(t, coding.IsMCQ())
}
