package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// AssessmentRepo реализует repository.AssessmentRepository
type AssessmentRepo struct {
	db *gorm.DB
}

// NewAssessmentRepo создает новый репозиторий попыток
func NewAssessmentRepo(db *gorm.DB) *AssessmentRepo {
	return &AssessmentRepo{db: db}
}

// FindOne возвращает попытку пары (userID, testID)
func (r *AssessmentRepo) FindOne(userID, testID uint) (*entity.Assessment, error) {
	var assessment entity.Assessment
	err := r.db.Preload("CodingAnswers").
		Where("user_id = ? AND test_id = ?", userID, testID).
		First(&assessment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &assessment, nil
}

// GetByID возвращает попытку вместе с coding-ответами
func (r *AssessmentRepo) GetByID(id uint) (*entity.Assessment, error) {
	var assessment entity.Assessment
	err := r.db.Preload("CodingAnswers").First(&assessment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &assessment, nil
}

// CreateIfAbsent создает попытку под защитой уникального индекса
// idx_assessment_user_test. Гонка двух конкурентных Start разрешается базой:
// - 23505 (unique violation) → проигравший перечитывает запись победителя
// - любая другая ошибка БД → возвращается как есть
func (r *AssessmentRepo) CreateIfAbsent(assessment *entity.Assessment) (*entity.Assessment, bool, error) {
	err := r.db.Create(assessment).Error
	if err == nil {
		return assessment, true, nil
	}

	if isUniqueViolation(err) {
		winner, findErr := r.FindOne(assessment.UserID, assessment.TestID)
		if findErr != nil {
			// Запись исчезла между нарушением индекса и перечтением -
			// отдаем конфликт, вызывающий может повторить Start
			return nil, false, fmt.Errorf("%w: concurrent start lost and winner vanished", apperrors.ErrConflict)
		}
		return winner, false, nil
	}

	return nil, false, err
}

// CompleteIfPending атомарно завершает попытку: единственный UPDATE с
// условием completed=false. Проигравший конкурентного Submit получает
// RowsAffected == 0 и никогда не перезаписывает чужой результат.
func (r *AssessmentRepo) CompleteIfPending(assessmentID uint, patch repository.SubmitPatch) (bool, error) {
	result := r.db.Model(&entity.Assessment{}).
		Where("id = ? AND completed = ?", assessmentID, false).
		Updates(map[string]interface{}{
			"user_answers":   patch.UserAnswers,
			"score":          patch.Score,
			"completed":      true,
			"submitted_at":   patch.SubmittedAt,
			"time_taken_sec": patch.TimeTakenSec,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpsertCodingAnswer сохраняет результат прогона кода. Сначала пробуем
// обновить существующую запись (assessment_id, question_id); если её нет -
// создаем. Конкурентная вставка под уникальным индексом повторяет обновление.
func (r *AssessmentRepo) UpsertCodingAnswer(answer *entity.CodingAnswer) error {
	updates := map[string]interface{}{
		"source_code":  answer.SourceCode,
		"language_id":  answer.LanguageID,
		"verdict":      answer.Verdict,
		"passed_count": answer.PassedCount,
		"total_count":  answer.TotalCount,
		"stdout":       answer.Stdout,
		"expected":     answer.Expected,
	}

	result := r.db.Model(&entity.CodingAnswer{}).
		Where("assessment_id = ? AND question_id = ?", answer.AssessmentID, answer.QuestionID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	if err := r.db.Create(answer).Error; err != nil {
		if isUniqueViolation(err) {
			// Конкурентный прогон успел вставить запись - обновляем её
			return r.db.Model(&entity.CodingAnswer{}).
				Where("assessment_id = ? AND question_id = ?", answer.AssessmentID, answer.QuestionID).
				Updates(updates).Error
		}
		return err
	}
	return nil
}

// ListByTest возвращает все попытки теста для лидерборда
func (r *AssessmentRepo) ListByTest(testID uint) ([]entity.Assessment, error) {
	var assessments []entity.Assessment
	err := r.db.Where("test_id = ?", testID).
		Order("score DESC, time_taken_sec ASC NULLS LAST").
		Find(&assessments).Error
	return assessments, err
}

// ListByUser возвращает все попытки пользователя
func (r *AssessmentRepo) ListByUser(userID uint) ([]entity.Assessment, error) {
	var assessments []entity.Assessment
	err := r.db.Preload("CodingAnswers").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&assessments).Error
	return assessments, err
}

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}
