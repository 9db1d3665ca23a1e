package handlers

import (
	"net/http"
	"strconv"
	"time"

	"askud/internal/models"
	"askud/internal/response"
	"askud/internal/storage"

	"github.com/gin-gonic/gin"
)

type PresenceItem struct {
	EmployeeID       uint      `json:"employee_id"`
	EmployeeName     string    `json:"employee_name"`
	Department       string    `json:"department"`
	LaboratoryID     uint      `json:"laboratory_id"`
	LaboratoryName   string    `json:"laboratory_name"`
	EntryTime        time.Time `json:"entry_time"`
	ExpectedExitTime time.Time `json:"expected_exit_time"`
}

// CurrentPresenceHandler возвращает всех сотрудников, находящихся в лабораториях
// @Summary		Текущее присутствие
// @Tags			presence
// @Produce		json
// @Success		200	{object}	map[string]interface{}
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/current_presence [get]
func CurrentPresenceHandler(c *gin.Context) {
	var records []models.CurrentPresence
	if err := storage.DB.Preload("Employee").Preload("Laboratory").
		Order("entry_time ASC").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки данных о присутствии",
			Details: err.Error(),
		})
		return
	}

	people := make([]PresenceItem, 0, len(records))
	for _, r := range records {
		people = append(people, PresenceItem{
			EmployeeID:       r.EmployeeID,
			EmployeeName:     r.Employee.FullName,
			Department:       r.Employee.Department,
			LaboratoryID:     r.LaboratoryID,
			LaboratoryName:   r.Laboratory.Name,
			EntryTime:        r.EntryTime,
			ExpectedExitTime: r.ExpectedExitTime,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(people),
		"people": people,
	})
}

// LaboratoryPresenceHandler возвращает сотрудников в конкретной лаборатории
// @Summary		Присутствие в лаборатории
// @Tags			presence
// @Produce		json
// @Param			lab_id	query		int	true	"ID лаборатории"
// @Success		200	{object}	map[string]interface{}
// @Failure		400	{object}	response.ErrorResponse	"Не указан ID лаборатории (VALIDATION_ERROR)"
// @Router			/api/laboratory_presence [get]
func LaboratoryPresenceHandler(c *gin.Context) {
	labID, err := strconv.Atoi(c.Query("lab_id"))
	if err != nil || labID <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Не указан ID лаборатории",
		})
		return
	}

	var records []models.CurrentPresence
	if err := storage.DB.Preload("Employee").Preload("Laboratory").
		Where("laboratory_id = ?", labID).
		Order("entry_time ASC").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки данных о присутствии",
			Details: err.Error(),
		})
		return
	}

	people := make([]PresenceItem, 0, len(records))
	for _, r := range records {
		people = append(people, PresenceItem{
			EmployeeID:       r.EmployeeID,
			EmployeeName:     r.Employee.FullName,
			Department:       r.Employee.Department,
			LaboratoryID:     r.LaboratoryID,
			LaboratoryName:   r.Laboratory.Name,
			EntryTime:        r.EntryTime,
			ExpectedExitTime: r.ExpectedExitTime,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(people),
		"people": people,
	})
}

// ListLaboratoriesHandler возвращает активные лаборатории с текущей загрузкой
// @Summary		Список лабораторий
// @Tags			presence
// @Produce		json
// @Success		200	{array}		map[string]interface{}
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/laboratories [get]
func ListLaboratoriesHandler(c *gin.Context) {
	var laboratories []models.Laboratory
	if err := storage.DB.Where("is_active = TRUE").Order("name ASC").Find(&laboratories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки лабораторий",
			Details: err.Error(),
		})
		return
	}

	result := make([]gin.H, 0, len(laboratories))
	for _, lab := range laboratories {
		var currentCount int64
		storage.DB.Model(&models.CurrentPresence{}).
			Where("laboratory_id = ?", lab.ID).Count(&currentCount)

		occupancy := 0
		if lab.Capacity > 0 {
			occupancy = int(float64(currentCount) / float64(lab.Capacity) * 100)
		}

		result = append(result, gin.H{
			"id":                lab.ID,
			"name":              lab.Name,
			"code":              lab.Code,
			"location":          lab.Location,
			"capacity":          lab.Capacity,
			"current_count":     currentCount,
			"occupancy_percent": occupancy,
		})
	}

	c.JSON(http.StatusOK, result)
}
