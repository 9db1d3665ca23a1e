package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"askud/internal/models"
	"askud/internal/response"
	"askud/internal/storage"

	"github.com/gin-gonic/gin"
)

var statsCtx = context.Background()

const statsCacheKey = "dashboard_stats"

type DashboardStats struct {
	EmployeesCount int64 `json:"employees_count"` // Активные сотрудники
	LabsCount      int64 `json:"labs_count"`      // Активные лаборатории
	ActiveCount    int64 `json:"active_count"`    // Сейчас в лабораториях
	TodayEvents    int64 `json:"today_events"`    // Событий за сегодня
}

// DashboardStatsHandler возвращает счётчики для панели администратора
// @Summary		Статистика для дашборда
// @Description	Счётчики кешируются в Redis на 30 секунд
// @Tags			admin
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	DashboardStats
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/admin/statistics [get]
func DashboardStatsHandler(c *gin.Context) {
	// Сначала пробуем кеш: счётчики обновляются часто, но точность
	// до секунды дашборду не нужна.
	if storage.RedisClient != nil {
		if cached, err := storage.RedisClient.Get(statsCtx, statsCacheKey).Result(); err == nil && cached != "" {
			var stats DashboardStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				c.JSON(http.StatusOK, stats)
				return
			}
		}
	}

	var stats DashboardStats
	if err := storage.DB.Model(&models.Employee{}).
		Where("is_active = TRUE").Count(&stats.EmployeesCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки статистики",
			Details: err.Error(),
		})
		return
	}
	storage.DB.Model(&models.Laboratory{}).Where("is_active = TRUE").Count(&stats.LabsCount)
	storage.DB.Model(&models.CurrentPresence{}).Count(&stats.ActiveCount)

	dayStart := time.Now().Truncate(24 * time.Hour)
	storage.DB.Model(&models.AccessEvent{}).
		Where("event_time >= ?", dayStart).Count(&stats.TodayEvents)

	if storage.RedisClient != nil {
		if data, err := json.Marshal(stats); err == nil {
			storage.RedisClient.Set(statsCtx, statsCacheKey, data, 30*time.Second)
		}
	}

	c.JSON(http.StatusOK, stats)
}
