package models

import (
	"time"
)

// Типы событий доступа
const (
	EventEntry = "entry"
	EventExit  = "exit"
)

// AccessEvent — запись журнала о попытке входа/выхода.
// Журнал только пополняется: записи не изменяются и не удаляются.
type AccessEvent struct {
	ID           uint      `gorm:"primaryKey"`
	EmployeeID   uint      `gorm:"index;not null"`
	LaboratoryID uint      `gorm:"index;not null"`
	EventType    string    `gorm:"not null"` // entry | exit
	EventTime    time.Time `gorm:"index;not null"`
	Success      bool      `gorm:"not null"`
	Reason       string    // Причина отказа (заполняется только при success = false)
	Method       string    `gorm:"default:pin"` // pin | login | card
}
