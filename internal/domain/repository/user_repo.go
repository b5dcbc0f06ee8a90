package repository

import (
	"github.com/yourusername/exam-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями.
// Создание/аутентификация пользователей живут во внешней подсистеме,
// здесь только чтения для проверок ролей и отображения в отчетах.
type UserRepository interface {
	GetByID(id uint) (*entity.User, error)
	// GetByIDs возвращает пользователей по списку ID (для лидерборда)
	GetByIDs(ids []uint) ([]entity.User, error)
}
