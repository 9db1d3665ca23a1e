package access

import (
	"errors"

	"askud/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredential — учётные данные не соответствуют активному сотруднику.
// Наружу всегда уходит одно и то же сообщение: по нему нельзя отличить
// несуществующий PIN от PIN-кода деактивированного сотрудника.
var ErrInvalidCredential = errors.New("неверные учётные данные")

// ResolveByPin находит активного сотрудника по PIN-коду.
func (s *Service) ResolveByPin(pin string) (*models.Employee, error) {
	var employee models.Employee
	err := s.db.Where("pin_code = ? AND is_active = TRUE", pin).First(&employee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredential
	}
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// ResolveByLogin находит активного сотрудника по логину и паролю.
func (s *Service) ResolveByLogin(login, password string) (*models.Employee, error) {
	var employee models.Employee
	err := s.db.Where("login = ? AND is_active = TRUE", login).First(&employee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredential
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}
	return &employee, nil
}
