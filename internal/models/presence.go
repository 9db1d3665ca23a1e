package models

import (
	"time"
)

// CurrentPresence — факт нахождения сотрудника в лаборатории.
// Уникальный индекс по EmployeeID гарантирует на уровне БД, что сотрудник
// не может находиться в двух лабораториях одновременно. Запись удаляется
// физически при выходе; мягкое удаление здесь не используется, иначе
// индекс блокировал бы повторный вход.
type CurrentPresence struct {
	ID               uint       `gorm:"primaryKey"`
	EmployeeID       uint       `gorm:"uniqueIndex;not null"`
	Employee         Employee   `gorm:"foreignKey:EmployeeID"`
	LaboratoryID     uint       `gorm:"index;not null"`
	Laboratory       Laboratory `gorm:"foreignKey:LaboratoryID"`
	EntryTime        time.Time  `gorm:"not null"`
	ExpectedExitTime time.Time  // Конец окна расписания в день входа. Справочное поле, автоматического выхода нет.
}
