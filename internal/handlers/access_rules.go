package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"askud/internal/models"
	"askud/internal/response"
	"askud/internal/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AccessRuleRequest struct {
	LaboratoryID uint   `json:"laboratory_id" binding:"required"`
	DaysOfWeek   []int  `json:"days_of_week"`
	TimeStart    string `json:"time_start" binding:"required"`
	TimeEnd      string `json:"time_end" binding:"required"`
}

// UpsertAccessRuleHandler добавляет или обновляет правило доступа сотрудника
// @Summary		Назначение права доступа
// @Description	На пару (сотрудник, лаборатория) существует одно правило: повторная запись обновляет дни и окно времени, а не добавляет строку
// @Tags			admin
// @Accept			json
// @Produce		json
// @Param			id		path		int					true	"ID сотрудника"
// @Param			rule	body		AccessRuleRequest	true	"Правило доступа"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		404	{object}	response.ErrorResponse	"Сотрудник или лаборатория не найдены"
// @Router			/api/admin/employees/{id}/access [post]
func UpsertAccessRuleHandler(c *gin.Context) {
	employeeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_EMPLOYEE_ID",
			Message: "Неверный идентификатор сотрудника",
		})
		return
	}

	var employee models.Employee
	if err := storage.DB.First(&employee, employeeID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "EMPLOYEE_NOT_FOUND",
			Message: "Сотрудник не найден",
		})
		return
	}

	var req AccessRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	for _, d := range req.DaysOfWeek {
		if d < 0 || d > 6 {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "Дни недели задаются числами от 0 (понедельник) до 6 (воскресенье)",
			})
			return
		}
	}

	start, err := models.ParseClock(req.TimeStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Время начала задаётся в формате ЧЧ:ММ",
		})
		return
	}
	end, err := models.ParseClock(req.TimeEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Время окончания задаётся в формате ЧЧ:ММ",
		})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Время окончания не может быть раньше времени начала",
		})
		return
	}

	var laboratory models.Laboratory
	if err := storage.DB.Where("id = ? AND is_active = TRUE", req.LaboratoryID).First(&laboratory).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "LAB_NOT_FOUND",
			Message: "Лаборатория не найдена",
		})
		return
	}

	days := models.JoinDays(req.DaysOfWeek)

	var existing models.AccessSchedule
	err = storage.DB.Where("employee_id = ? AND laboratory_id = ?", employee.ID, laboratory.ID).
		First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"days_of_week": days,
			"time_start":   req.TimeStart,
			"time_end":     req.TimeEnd,
		}
		if err := storage.DB.Model(&existing).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Code:    "DB_ERROR",
				Message: "Ошибка при обновлении правила доступа",
				Details: err.Error(),
			})
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		rule := models.AccessSchedule{
			EmployeeID:   employee.ID,
			LaboratoryID: laboratory.ID,
			DaysOfWeek:   days,
			TimeStart:    req.TimeStart,
			TimeEnd:      req.TimeEnd,
		}
		if err := storage.DB.Create(&rule).Error; err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Code:    "DB_ERROR",
				Message: "Ошибка при создании правила доступа",
				Details: err.Error(),
			})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка поиска правила доступа",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Права доступа обновлены"})
}

// ListAccessRulesHandler возвращает правила доступа сотрудника
// @Summary		Права доступа сотрудника
// @Tags			admin
// @Produce		json
// @Param			id	path		int	true	"ID сотрудника"
// @Security		BearerAuth
// @Success		200	{array}		map[string]interface{}
// @Failure		404	{object}	response.ErrorResponse	"Сотрудник не найден (EMPLOYEE_NOT_FOUND)"
// @Router			/api/admin/employees/{id}/access [get]
func ListAccessRulesHandler(c *gin.Context) {
	employeeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_EMPLOYEE_ID",
			Message: "Неверный идентификатор сотрудника",
		})
		return
	}

	var employee models.Employee
	if err := storage.DB.First(&employee, employeeID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "EMPLOYEE_NOT_FOUND",
			Message: "Сотрудник не найден",
		})
		return
	}

	var rules []models.AccessSchedule
	if err := storage.DB.Preload("Laboratory").
		Where("employee_id = ?", employee.ID).Find(&rules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки правил доступа",
			Details: err.Error(),
		})
		return
	}

	result := make([]gin.H, 0, len(rules))
	for _, r := range rules {
		result = append(result, gin.H{
			"id":              r.ID,
			"laboratory_id":   r.LaboratoryID,
			"laboratory_name": r.Laboratory.Name,
			"laboratory_code": r.Laboratory.Code,
			"days_of_week":    r.AllowedDays(),
			"time_start":      r.TimeStart,
			"time_end":        r.TimeEnd,
		})
	}

	c.JSON(http.StatusOK, result)
}

// DeleteAccessRuleHandler удаляет правило доступа
// @Summary		Удаление права доступа
// @Tags			admin
// @Produce		json
// @Param			id		path		int	true	"ID сотрудника"
// @Param			ruleID	path		int	true	"ID правила"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		404	{object}	response.ErrorResponse	"Правило не найдено (RULE_NOT_FOUND)"
// @Router			/api/admin/employees/{id}/access/{ruleID} [delete]
func DeleteAccessRuleHandler(c *gin.Context) {
	employeeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_EMPLOYEE_ID",
			Message: "Неверный идентификатор сотрудника",
		})
		return
	}
	ruleID, err := strconv.Atoi(c.Param("ruleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_RULE_ID",
			Message: "Неверный идентификатор правила",
		})
		return
	}

	var rule models.AccessSchedule
	if err := storage.DB.Where("id = ? AND employee_id = ?", ruleID, employeeID).First(&rule).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "RULE_NOT_FOUND",
			Message: "Расписание не найдено",
		})
		return
	}

	if err := storage.DB.Unscoped().Delete(&rule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при удалении расписания",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Расписание удалено"})
}
