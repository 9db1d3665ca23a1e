package handlers

import (
	"net/http"
	"strconv"
	"time"

	"askud/internal/access"
	"askud/internal/response"

	"github.com/gin-gonic/gin"
)

type EventItem struct {
	ID           uint      `json:"id"`
	EmployeeID   uint      `json:"employee_id"`
	LaboratoryID uint      `json:"laboratory_id"`
	EventType    string    `json:"event_type"`
	EventTime    time.Time `json:"event_time"`
	Success      bool      `json:"success"`
	Reason       string    `json:"reason,omitempty"`
	Method       string    `json:"method"`
}

// ListEventsHandler возвращает журнал событий доступа
// @Summary		Журнал событий
// @Description	События в порядке времени, с фильтрами по периоду, сотруднику и лаборатории
// @Tags			admin
// @Produce		json
// @Param			from			query	string	false	"Начало периода (RFC3339 или 2006-01-02)"
// @Param			to				query	string	false	"Конец периода (RFC3339 или 2006-01-02)"
// @Param			employee_id		query	int		false	"Фильтр по сотруднику"
// @Param			laboratory_id	query	int		false	"Фильтр по лаборатории"
// @Param			limit			query	int		false	"Максимум записей"
// @Security		BearerAuth
// @Success		200	{array}		EventItem
// @Failure		400	{object}	response.ErrorResponse	"Неверный формат даты (VALIDATION_ERROR)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/admin/events [get]
func ListEventsHandler(c *gin.Context) {
	var filter access.EventFilter

	if raw := c.Query("from"); raw != "" {
		t, err := parseEventTime(raw, false)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "Неверный формат параметра from",
			})
			return
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := parseEventTime(raw, true)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "Неверный формат параметра to",
			})
			return
		}
		filter.To = &t
	}
	if raw := c.Query("employee_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err == nil {
			filter.EmployeeID = uint(id)
		}
	}
	if raw := c.Query("laboratory_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err == nil {
			filter.LaboratoryID = uint(id)
		}
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err == nil {
			filter.Limit = n
		}
	}

	events, err := accessService.Events(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки журнала событий",
			Details: err.Error(),
		})
		return
	}

	result := make([]EventItem, 0, len(events))
	for _, e := range events {
		result = append(result, EventItem{
			ID:           e.ID,
			EmployeeID:   e.EmployeeID,
			LaboratoryID: e.LaboratoryID,
			EventType:    e.EventType,
			EventTime:    e.EventTime,
			Success:      e.Success,
			Reason:       e.Reason,
			Method:       e.Method,
		})
	}

	c.JSON(http.StatusOK, result)
}

// parseEventTime принимает RFC3339 либо дату без времени; дата в параметре
// to трактуется как конец суток.
func parseEventTime(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}
