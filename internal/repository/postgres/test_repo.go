package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// TestRepo реализует repository.TestRepository
type TestRepo struct {
	db *gorm.DB
}

// NewTestRepo создает новый репозиторий тестов
func NewTestRepo(db *gorm.DB) *TestRepo {
	return &TestRepo{db: db}
}

// Create создает тест вместе с вопросами.
// Дубликат test_code (уникальный индекс) возвращается как ErrConflict.
func (r *TestRepo) Create(test *entity.Test) error {
	if err := r.db.Create(test).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: test code %q already exists", apperrors.ErrConflict, test.TestCode)
		}
		return err
	}
	return nil
}

// GetByID возвращает тест вместе с вопросами в порядке position
func (r *TestRepo) GetByID(id uint) (*entity.Test, error) {
	var test entity.Test
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).First(&test, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &test, nil
}

// GetByCode возвращает тест по testCode вместе с вопросами
func (r *TestRepo) GetByCode(code string) (*entity.Test, error) {
	var test entity.Test
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).Where("test_code = ?", code).First(&test).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &test, nil
}

// GetByQuestionID возвращает тест, которому принадлежит вопрос
func (r *TestRepo) GetByQuestionID(questionID uint) (*entity.Test, error) {
	var question entity.Question
	err := r.db.First(&question, questionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(question.TestID)
}

// List возвращает список тестов с пагинацией (без вопросов)
func (r *TestRepo) List(limit, offset int) ([]entity.Test, error) {
	var tests []entity.Test
	err := r.db.Limit(limit).Offset(offset).Order("id DESC").Find(&tests).Error
	return tests, err
}
