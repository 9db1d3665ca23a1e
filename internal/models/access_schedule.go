package models

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// AccessSchedule — правило доступа сотрудника в лабораторию.
// На пару (сотрудник, лаборатория) существует не более одной записи,
// повторная запись обновляет существующую.
type AccessSchedule struct {
	gorm.Model
	EmployeeID   uint       `gorm:"not null;index;uniqueIndex:idx_employee_laboratory"`
	Employee     Employee   `gorm:"foreignKey:EmployeeID"`
	LaboratoryID uint       `gorm:"not null;index;uniqueIndex:idx_employee_laboratory"`
	Laboratory   Laboratory `gorm:"foreignKey:LaboratoryID"`
	DaysOfWeek   string     `gorm:"not null"` // Разрешённые дни недели, например "0,2,4" (0 = понедельник). Пустая строка — доступ запрещён во все дни.
	TimeStart    string     `gorm:"not null"` // Начало окна доступа в формате "15:04"
	TimeEnd      string     `gorm:"not null"` // Конец окна доступа в формате "15:04", включительно
}

// AllowedDays разбирает строку дней недели в список чисел 0..6.
func (s *AccessSchedule) AllowedDays() []int {
	var days []int
	for _, part := range strings.Split(s.DaysOfWeek, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil || d < 0 || d > 6 {
			continue
		}
		days = append(days, d)
	}
	return days
}

// DayAllowed проверяет, разрешён ли день недели (0 = понедельник).
func (s *AccessSchedule) DayAllowed(day int) bool {
	for _, d := range s.AllowedDays() {
		if d == day {
			return true
		}
	}
	return false
}

// JoinDays собирает список дней недели обратно в строку для хранения.
func JoinDays(days []int) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ",")
}

// ParseClock разбирает время вида "15:04".
func ParseClock(value string) (time.Time, error) {
	return time.Parse("15:04", value)
}

// Weekday переводит день недели time.Weekday в нумерацию системы (0 = понедельник).
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
