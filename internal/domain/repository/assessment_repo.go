package repository

import (
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// SubmitPatch - набор полей, записываемых при сдаче попытки.
// Применяется только условным обновлением completed=false -> true.
type SubmitPatch struct {
	UserAnswers  entity.IntArray
	Score        int
	SubmittedAt  time.Time
	TimeTakenSec int
}

// AssessmentRepository определяет методы для работы с попытками.
// Две узкие условно-атомарные операции (CreateIfAbsent, CompleteIfPending) -
// единственные пути мутации записи; ad hoc обновлений полей нет.
type AssessmentRepository interface {
	// FindOne возвращает попытку пары (userID, testID) или ErrNotFound
	FindOne(userID, testID uint) (*entity.Assessment, error)
	// GetByID возвращает попытку вместе с coding-ответами
	GetByID(id uint) (*entity.Assessment, error)
	// CreateIfAbsent создает попытку под уникальным индексом (user_id, test_id).
	// При проигрыше гонки возвращает запись победителя и created=false.
	CreateIfAbsent(assessment *entity.Assessment) (*entity.Assessment, bool, error)
	// CompleteIfPending атомарно применяет patch к попытке с completed=false.
	// Возвращает false, если попытка уже завершена (проигрыш гонки Submit).
	CompleteIfPending(assessmentID uint, patch SubmitPatch) (bool, error)
	// UpsertCodingAnswer сохраняет результат прогона кода; повторный прогон
	// того же вопроса перезаписывает предыдущий результат.
	UpsertCodingAnswer(answer *entity.CodingAnswer) error
	// ListByTest возвращает все попытки теста (для лидерборда)
	ListByTest(testID uint) ([]entity.Assessment, error)
	// ListByUser возвращает все попытки пользователя
	ListByUser(userID uint) ([]entity.Assessment, error)
}
