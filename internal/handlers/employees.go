package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"askud/internal/models"
	"askud/internal/response"
	"askud/internal/storage"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateEmployeeRequest struct {
	Login      string `json:"login" binding:"required"`
	Password   string `json:"password" binding:"required"`
	PinCode    string `json:"pin_code" binding:"required"`
	FullName   string `json:"full_name" binding:"required"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	UserType   string `json:"user_type"`
}

type EmployeeResponse struct {
	ID         uint   `json:"id"`
	Login      string `json:"login"`
	FullName   string `json:"full_name"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	IsActive   bool   `json:"is_active"`
	UserType   string `json:"user_type"`
}

func employeeResponse(e models.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:         e.ID,
		Login:      e.Login,
		FullName:   e.FullName,
		Department: e.Department,
		Position:   e.Position,
		Phone:      e.Phone,
		Email:      e.Email,
		IsActive:   e.IsActive,
		UserType:   e.UserType,
	}
}

// CreateEmployeeHandler добавляет нового сотрудника
// @Summary		Добавление сотрудника
// @Description	Создаёт сотрудника с уникальными логином и PIN-кодом, пароль хешируется
// @Tags			admin
// @Accept			json
// @Produce		json
// @Param			employee	body		CreateEmployeeRequest		true	"Данные сотрудника"
// @Security		BearerAuth
// @Success		201	{object}	EmployeeResponse			"Сотрудник создан"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, PIN_EXISTS, LOGIN_EXISTS)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/admin/employees [post]
func CreateEmployeeHandler(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	req.PinCode = strings.TrimSpace(req.PinCode)
	if !cfg.ValidatePin(req.PinCode) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: fmt.Sprintf("PIN-код должен содержать от %d до %d цифр", cfg.MinPinLength, cfg.MaxPinLength),
		})
		return
	}
	if !cfg.ValidatePassword(req.Password) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: fmt.Sprintf("Пароль должен содержать не менее %d символов", cfg.MinPasswordLength),
		})
		return
	}

	// Логин и PIN уникальны среди всех сотрудников, включая деактивированных.
	var existing models.Employee
	if err := storage.DB.Where("login = ?", req.Login).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "LOGIN_EXISTS",
			Message: "Логин уже существует",
		})
		return
	}
	if err := storage.DB.Where("pin_code = ?", req.PinCode).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "PIN_EXISTS",
			Message: "PIN-код уже существует",
		})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "PASSWORD_HASH_ERROR",
			Message: "Ошибка при хешировании пароля",
		})
		return
	}

	userType := req.UserType
	if userType != models.UserTypeAdmin {
		userType = models.UserTypeEmployee
	}

	employee := models.Employee{
		Login:        req.Login,
		PasswordHash: string(hashedPassword),
		PinCode:      req.PinCode,
		FullName:     req.FullName,
		Department:   req.Department,
		Position:     req.Position,
		Phone:        req.Phone,
		Email:        req.Email,
		IsActive:     true,
		UserType:     userType,
	}

	if err := storage.DB.Create(&employee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании сотрудника",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, employeeResponse(employee))
}

// ListEmployeesHandler возвращает список сотрудников
// @Summary		Список сотрудников
// @Tags			admin
// @Produce		json
// @Security		BearerAuth
// @Success		200	{array}		EmployeeResponse
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/admin/employees [get]
func ListEmployeesHandler(c *gin.Context) {
	var employees []models.Employee
	if err := storage.DB.Order("full_name ASC").Find(&employees).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки сотрудников",
			Details: err.Error(),
		})
		return
	}

	result := make([]EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		result = append(result, employeeResponse(e))
	}
	c.JSON(http.StatusOK, result)
}

// GetEmployeeHandler возвращает сотрудника и его правила доступа
// @Summary		Карточка сотрудника
// @Tags			admin
// @Produce		json
// @Param			id	path		int	true	"ID сотрудника"
// @Security		BearerAuth
// @Success		200	{object}	map[string]interface{}
// @Failure		404	{object}	response.ErrorResponse	"Сотрудник не найден (EMPLOYEE_NOT_FOUND)"
// @Router			/api/admin/employees/{id} [get]
func GetEmployeeHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_EMPLOYEE_ID",
			Message: "Неверный идентификатор сотрудника",
		})
		return
	}

	var employee models.Employee
	if err := storage.DB.First(&employee, id).Error; err != nil {
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

	schedule := make([]gin.H, 0, len(rules))
	for _, r := range rules {
		schedule = append(schedule, gin.H{
			"laboratory_id":   r.LaboratoryID,
			"laboratory_name": r.Laboratory.Name,
			"days_of_week":    r.AllowedDays(),
			"time_start":      r.TimeStart,
			"time_end":        r.TimeEnd,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"employee":        employeeResponse(employee),
		"access_schedule": schedule,
	})
}

type UpdateEmployeeRequest struct {
	Password   *string `json:"password"`
	PinCode    *string `json:"pin_code"`
	FullName   *string `json:"full_name"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	IsActive   *bool   `json:"is_active"`
	UserType   *string `json:"user_type"`
}

// UpdateEmployeeHandler обновляет данные сотрудника
// @Summary		Обновление сотрудника
// @Description	Частичное обновление: передаются только изменяемые поля
// @Tags			admin
// @Accept			json
// @Produce		json
// @Param			id			path		int						true	"ID сотрудника"
// @Param			employee	body		UpdateEmployeeRequest	true	"Изменяемые поля"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, PIN_EXISTS)"
// @Failure		404	{object}	response.ErrorResponse	"Сотрудник не найден (EMPLOYEE_NOT_FOUND)"
// @Router			/api/admin/employees/{id} [put]
func UpdateEmployeeHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_EMPLOYEE_ID",
			Message: "Неверный идентификатор сотрудника",
		})
		return
	}

	var employee models.Employee
	if err := storage.DB.First(&employee, id).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "EMPLOYEE_NOT_FOUND",
			Message: "Сотрудник не найден",
		})
		return
	}

	var req UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	updates := map[string]interface{}{}

	if req.PinCode != nil {
		pin := strings.TrimSpace(*req.PinCode)
		if !cfg.ValidatePin(pin) {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: fmt.Sprintf("PIN-код должен содержать от %d до %d цифр", cfg.MinPinLength, cfg.MaxPinLength),
			})
			return
		}
		var other models.Employee
		if err := storage.DB.Where("pin_code = ? AND id != ?", pin, employee.ID).First(&other).Error; err == nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "PIN_EXISTS",
				Message: "PIN-код уже используется другим сотрудником",
			})
			return
		}
		updates["pin_code"] = pin
	}

	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		password := strings.TrimSpace(*req.Password)
		if !cfg.ValidatePassword(password) {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: fmt.Sprintf("Пароль должен содержать не менее %d символов", cfg.MinPasswordLength),
			})
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Code:    "PASSWORD_HASH_ERROR",
				Message: "Ошибка при хешировании пароля",
			})
			return
		}
		updates["password_hash"] = string(hashed)
	}

	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.UserType != nil {
		if *req.UserType != models.UserTypeAdmin && *req.UserType != models.UserTypeEmployee {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "Недопустимый тип пользователя",
			})
			return
		}
		updates["user_type"] = *req.UserType
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Нет данных для обновления",
		})
		return
	}

	if err := storage.DB.Model(&employee).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при обновлении сотрудника",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Данные сотрудника обновлены"})
}

// DeleteEmployeeHandler удаляет сотрудника
// @Summary		Удаление сотрудника
// @Description	Сотрудник, находящийся в лаборатории, не может быть удалён. Правила доступа удаляются каскадно.
// @Tags			admin
// @Produce		json
// @Param			id	path		int	true	"ID сотрудника"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		404	{object}	response.ErrorResponse	"Сотрудник не найден (EMPLOYEE_NOT_FOUND)"
// @Failure		409	{object}	response.ErrorResponse	"Сотрудник в лаборатории (CONFLICT)"
// @Router			/api/admin/employees/{id} [delete]
func DeleteEmployeeHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_EMPLOYEE_ID",
			Message: "Неверный идентификатор сотрудника",
		})
		return
	}

	var employee models.Employee
	if err := storage.DB.First(&employee, id).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "EMPLOYEE_NOT_FOUND",
			Message: "Сотрудник не найден",
		})
		return
	}

	var presence models.CurrentPresence
	if err := storage.DB.Where("employee_id = ?", employee.ID).First(&presence).Error; err == nil {
		c.JSON(http.StatusConflict, response.ErrorResponse{
			Code:    "CONFLICT",
			Message: "Нельзя удалить сотрудника, который находится в лаборатории",
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

	err = storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("employee_id = ?", employee.ID).
			Delete(&models.AccessSchedule{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&employee).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при удалении сотрудника",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Сотрудник удалён"})
}
