package access

import (
	"time"

	"askud/internal/models"

	"gorm.io/gorm"
)

// appendEvent дописывает событие в журнал внутри переданной транзакции.
func appendEvent(tx *gorm.DB, employeeID, laboratoryID uint, eventType string, success bool, reason, method string, now time.Time) error {
	event := models.AccessEvent{
		EmployeeID:   employeeID,
		LaboratoryID: laboratoryID,
		EventType:    eventType,
		EventTime:    now,
		Success:      success,
		Reason:       reason,
		Method:       method,
	}
	return tx.Create(&event).Error
}

// EventFilter — условия выборки журнала событий.
type EventFilter struct {
	From         *time.Time
	To           *time.Time
	EmployeeID   uint
	LaboratoryID uint
	Limit        int
}

// Events возвращает события журнала в порядке их времени.
// Журнал только читается: изменение и удаление событий не предусмотрены.
func (s *Service) Events(filter EventFilter) ([]models.AccessEvent, error) {
	query := s.db.Model(&models.AccessEvent{})

	if filter.From != nil {
		query = query.Where("event_time >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("event_time <= ?", *filter.To)
	}
	if filter.EmployeeID != 0 {
		query = query.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.LaboratoryID != 0 {
		query = query.Where("laboratory_id = ?", filter.LaboratoryID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var events []models.AccessEvent
	if err := query.Order("event_time ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
