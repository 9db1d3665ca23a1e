package tasks

import (
	"context"
	"log"
	"time"

	"askud/internal/models"
	"askud/internal/storage"
	"askud/internal/ws"

	"github.com/robfig/cron/v3"
)

var ctx = context.Background()

// NotifyOverduePresence ищет сотрудников, оставшихся в лабораториях после
// ожидаемого времени выхода, и рассылает уведомления наблюдателям.
// Записи присутствия при этом не трогаются: автоматического выхода в системе
// нет, сотрудник покидает лабораторию только по предъявлению учётных данных.
func NotifyOverduePresence() {
	now := time.Now()

	var overdue []models.CurrentPresence
	if err := storage.DB.Preload("Employee").
		Where("expected_exit_time < ?", now).Find(&overdue).Error; err != nil {
		log.Println("Ошибка поиска просроченного присутствия:", err)
		return
	}

	for _, p := range overdue {
		log.Printf("Сотрудник %s находится в лаборатории %d после ожидаемого времени выхода (%s)\n",
			p.Employee.FullName, p.LaboratoryID, p.ExpectedExitTime.Format(time.RFC3339))
		ws.HubInstance.BroadcastAccess(p.LaboratoryID, ws.AccessMessage{
			EventType:    "presence_overdue",
			EmployeeID:   p.EmployeeID,
			EmployeeName: p.Employee.FullName,
			LaboratoryID: p.LaboratoryID,
		})
	}
}

// ResetStatsCache сбрасывает ночной кеш статистики, чтобы счётчики
// нового дня не отдавались из вчерашнего значения.
func ResetStatsCache() {
	if storage.RedisClient == nil {
		return
	}
	if err := storage.RedisClient.Del(ctx, "dashboard_stats").Err(); err != nil {
		log.Println("Ошибка сброса кеша статистики:", err)
	}
}

// InitScheduler инициализирует планировщик cron-задач.
func InitScheduler() *cron.Cron {
	c := cron.New(cron.WithSeconds())

	// Проверка просроченного присутствия каждые 5 минут.
	_, err := c.AddFunc("0 */5 * * * *", NotifyOverduePresence)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи NotifyOverduePresence:", err)
	}

	// Сброс кеша статистики в полночь.
	_, err = c.AddFunc("0 0 0 * * *", ResetStatsCache)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи ResetStatsCache:", err)
	}

	c.Start()
	log.Println("Cron-планировщик запущен.")
	return c
}
