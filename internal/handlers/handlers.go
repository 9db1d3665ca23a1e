package handlers

import (
	"askud/internal/access"
	"askud/internal/config"
)

var (
	accessService *access.Service
	cfg           config.Config
)

// Init передаёт обработчикам сервис доступа и конфигурацию.
// Вызывается из main после подключения к базе данных.
func Init(svc *access.Service, c config.Config) {
	accessService = svc
	cfg = c
}
