package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTest_IsLive_WindowBounds(t *testing.T) {
	// Arrange
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(1 * time.Hour)
	test := &Test{StartTime: start, EndTime: end}

	// Act & Assert: границы окна включительны
	assert.True(t, test.IsLive(start), "тест открыт ровно в StartTime")
	assert.True(t, test.IsLive(end), "тест открыт ровно в EndTime")
	assert.True(t, test.IsLive(start.Add(30*time.Minute)))

	assert.False(t, test.IsLive(start.Add(-time.Second)), "до начала окна тест закрыт")
	assert.False(t, test.IsLive(end.Add(time.Second)), "после конца окна тест закрыт")
}

func TestTest_MCQCount_IgnoresCoding(t *testing.T) {
	// Arrange
	test := &Test{
		Questions: []Question{
			{Type: QuestionTypeMCQ},
			{Type: QuestionTypeCoding},
			{Type: QuestionTypeMCQ},
		},
	}

	// Act & Assert
	assert.Equal(t, 2, test.MCQCount(), "coding-вопросы не входят в максимум балла")
}

func TestAssessment_DeadlineExceeded(t *testing.T) {
	// Arrange
	startedAt := time.Date(2025, 3, 1, 10, 5, 0, 0, time.UTC)
	assessment := &Assessment{StartedAt: startedAt}

	// Act & Assert: дедлайн = startedAt + 10 минут
	assert.False(t, assessment.DeadlineExceeded(startedAt.Add(9*time.Minute), 10))
	assert.False(t, assessment.DeadlineExceeded(startedAt.Add(10*time.Minute), 10), "ровно в дедлайн сдача еще возможна")
	assert.True(t, assessment.DeadlineExceeded(startedAt.Add(10*time.Minute+time.Second), 10))
}

func TestIntArray_At_OutOfRange(t *testing.T) {
	// Arrange
	answers := IntArray{1, 0, 2}

	// Act & Assert: выход за пределы массива = нет ответа, не паника
	assert.Equal(t, 1, answers.At(0))
	assert.Equal(t, 2, answers.At(2))
	assert.Equal(t, UnansweredOption, answers.At(3))
	assert.Equal(t, UnansweredOption, answers.At(-1))
}
