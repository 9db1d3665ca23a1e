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

type CreateLaboratoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Code        string `json:"code" binding:"required"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
}

// CreateLaboratoryHandler добавляет новую лабораторию
// @Summary		Добавление лаборатории
// @Tags			admin
// @Accept			json
// @Produce		json
// @Param			laboratory	body		CreateLaboratoryRequest	true	"Данные лаборатории"
// @Security		BearerAuth
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, CODE_EXISTS)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/admin/laboratories [post]
func CreateLaboratoryHandler(c *gin.Context) {
	var req CreateLaboratoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	if req.Capacity < 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Вместимость не может быть отрицательной",
		})
		return
	}

	var existing models.Laboratory
	if err := storage.DB.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "CODE_EXISTS",
			Message: "Лаборатория с таким кодом уже существует",
		})
		return
	}

	laboratory := models.Laboratory{
		Name:        req.Name,
		Code:        req.Code,
		Location:    req.Location,
		Description: req.Description,
		Capacity:    req.Capacity,
		IsActive:    true,
	}

	if err := storage.DB.Create(&laboratory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании лаборатории",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Лаборатория добавлена", "laboratory_id": laboratory.ID})
}

// ListLaboratoriesAdminHandler возвращает лаборатории с числом сотрудников внутри
// @Summary		Список лабораторий (админ)
// @Tags			admin
// @Produce		json
// @Security		BearerAuth
// @Success		200	{array}		map[string]interface{}
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/admin/laboratories [get]
func ListLaboratoriesAdminHandler(c *gin.Context) {
	var laboratories []models.Laboratory
	if err := storage.DB.Order("name ASC").Find(&laboratories).Error; err != nil {
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
			"description":       lab.Description,
			"capacity":          lab.Capacity,
			"is_active":         lab.IsActive,
			"current_count":     currentCount,
			"occupancy_percent": occupancy,
		})
	}

	c.JSON(http.StatusOK, result)
}

type UpdateLaboratoryRequest struct {
	Name        *string `json:"name"`
	Code        *string `json:"code"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	Capacity    *int    `json:"capacity"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateLaboratoryHandler обновляет данные лаборатории
// @Summary		Обновление лаборатории
// @Tags			admin
// @Accept			json
// @Produce		json
// @Param			id			path		int						true	"ID лаборатории"
// @Param			laboratory	body		UpdateLaboratoryRequest	true	"Изменяемые поля"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, CODE_EXISTS)"
// @Failure		404	{object}	response.ErrorResponse	"Лаборатория не найдена (LAB_NOT_FOUND)"
// @Router			/api/admin/laboratories/{id} [put]
func UpdateLaboratoryHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_LAB_ID",
			Message: "Неверный идентификатор лаборатории",
		})
		return
	}

	var laboratory models.Laboratory
	if err := storage.DB.First(&laboratory, id).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "LAB_NOT_FOUND",
			Message: "Лаборатория не найдена",
		})
		return
	}

	var req UpdateLaboratoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	updates := map[string]interface{}{}

	if req.Code != nil {
		var other models.Laboratory
		if err := storage.DB.Where("code = ? AND id != ?", *req.Code, laboratory.ID).First(&other).Error; err == nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "CODE_EXISTS",
				Message: "Код лаборатории уже используется",
			})
			return
		}
		updates["code"] = *req.Code
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Capacity != nil {
		if *req.Capacity < 0 {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "Вместимость не может быть отрицательной",
			})
			return
		}
		updates["capacity"] = *req.Capacity
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Нет данных для обновления",
		})
		return
	}

	if err := storage.DB.Model(&laboratory).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при обновлении лаборатории",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Данные лаборатории обновлены"})
}

// DeleteLaboratoryHandler удаляет или деактивирует лабораторию
// @Summary		Удаление лаборатории
// @Description	Лаборатория с сотрудниками внутри не удаляется. При наличии правил доступа лаборатория деактивируется вместо удаления.
// @Tags			admin
// @Produce		json
// @Param			id	path		int	true	"ID лаборатории"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		404	{object}	response.ErrorResponse	"Лаборатория не найдена (LAB_NOT_FOUND)"
// @Failure		409	{object}	response.ErrorResponse	"В лаборатории находятся сотрудники (CONFLICT)"
// @Router			/api/admin/laboratories/{id} [delete]
func DeleteLaboratoryHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_LAB_ID",
			Message: "Неверный идентификатор лаборатории",
		})
		return
	}

	var laboratory models.Laboratory
	if err := storage.DB.First(&laboratory, id).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "LAB_NOT_FOUND",
			Message: "Лаборатория не найдена",
		})
		return
	}

	var presence models.CurrentPresence
	if err := storage.DB.Where("laboratory_id = ?", laboratory.ID).First(&presence).Error; err == nil {
		c.JSON(http.StatusConflict, response.ErrorResponse{
			Code:    "CONFLICT",
			Message: "Нельзя удалить лабораторию, в которой находятся сотрудники",
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка проверки присутствия",
			Details: err.Error(),
		})
		return
	}

	// При наличии правил доступа лаборатория деактивируется, а не удаляется:
	// ссылающиеся на неё записи остаются валидными.
	var rule models.AccessSchedule
	if err := storage.DB.Where("laboratory_id = ?", laboratory.ID).First(&rule).Error; err == nil {
		if err := storage.DB.Model(&laboratory).Update("is_active", false).Error; err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Code:    "DB_ERROR",
				Message: "Ошибка при деактивации лаборатории",
				Details: err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, response.SuccessResponse{
			Message: "Лаборатория деактивирована (есть связанные права доступа)",
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка проверки правил доступа",
			Details: err.Error(),
		})
		return
	}

	if err := storage.DB.Unscoped().Delete(&laboratory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при удалении лаборатории",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Лаборатория удалена"})
}
