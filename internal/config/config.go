package config

import (
	"os"
	"strconv"
)

// Config — явные настройки валидации учётных данных.
// Передаётся в обработчики и сервис доступа, а не читается из глобальных констант.
type Config struct {
	MinPinLength      int
	MaxPinLength      int
	MinPasswordLength int
}

// Load читает настройки из переменных окружения, подставляя значения по умолчанию.
func Load() Config {
	return Config{
		MinPinLength:      envInt("MIN_PIN_LENGTH", 4),
		MaxPinLength:      envInt("MAX_PIN_LENGTH", 8),
		MinPasswordLength: envInt("MIN_PASSWORD_LENGTH", 6),
	}
}

func envInt(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// ValidatePin проверяет длину и формат PIN-кода.
func (c Config) ValidatePin(pin string) bool {
	if len(pin) < c.MinPinLength || len(pin) > c.MaxPinLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidatePassword проверяет минимальную длину пароля.
func (c Config) ValidatePassword(password string) bool {
	return len(password) >= c.MinPasswordLength
}
