package models

import (
	"gorm.io/gorm"
)

// Типы пользователей системы
const (
	UserTypeEmployee = "employee"
	UserTypeAdmin    = "admin"
)

// Методы аутентификации на терминале
const (
	MethodPin   = "pin"
	MethodLogin = "login"
	MethodCard  = "card"
)

type Employee struct {
	gorm.Model
	Login        string `gorm:"uniqueIndex;not null"` // Логин для входа в админ-панель
	PasswordHash string `gorm:"not null"`             // bcrypt-хеш пароля
	PinCode      string `gorm:"uniqueIndex;not null"` // PIN-код для терминала, уникален среди всех сотрудников (включая неактивных)
	FullName     string `gorm:"not null"`
	Department   string
	Position     string
	Phone        string
	Email        string
	IsActive     bool   `gorm:"default:true"`     // Неактивный сотрудник не проходит через терминал
	UserType     string `gorm:"default:employee"` // employee | admin
}

type Laboratory struct {
	gorm.Model
	Name        string `gorm:"not null"`
	Code        string `gorm:"uniqueIndex;not null"` // Уникальный код лаборатории, например "CHEM-01"
	Location    string
	Description string
	Capacity    int  // Вместимость (0 — без ограничения)
	IsActive    bool `gorm:"default:true"`
}
