package repository

import (
	"github.com/yourusername/exam-api/internal/domain/entity"
)

// TestRepository определяет методы для работы с тестами.
// Тесты неизменяемы после создания: есть Create и чтения, но нет Update.
type TestRepository interface {
	Create(test *entity.Test) error
	// GetByID возвращает тест вместе с вопросами (в порядке position)
	GetByID(id uint) (*entity.Test, error)
	// GetByCode возвращает тест по testCode вместе с вопросами
	GetByCode(code string) (*entity.Test, error)
	// GetByQuestionID возвращает тест, которому принадлежит вопрос.
	// ID вопросов глобально уникальны, поэтому поиск глобальный.
	GetByQuestionID(questionID uint) (*entity.Test, error)
	List(limit, offset int) ([]entity.Test, error)
}
