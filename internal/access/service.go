package access

import (
	"sync"

	"gorm.io/gorm"
)

// Service — ядро контроля доступа: разрешение учётных данных, проверка
// расписания и переключение присутствия. База данных передаётся явно,
// глобальное состояние пакет не использует.
type Service struct {
	db    *gorm.DB
	locks sync.Map // uint (employee id) -> *sync.Mutex
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// lockFor возвращает мьютекс конкретного сотрудника. Последовательность
// "проверить присутствие — переключить" выполняется только под ним,
// попытки разных сотрудников друг другу не мешают.
func (s *Service) lockFor(employeeID uint) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(employeeID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
