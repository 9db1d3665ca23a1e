package handlers

import (
	"net/http"
	"time"

	"askud/internal/access"
	"askud/internal/models"
	"askud/internal/response"
	"askud/internal/ws"

	"github.com/gin-gonic/gin"
)

type VerifyRequest struct {
	PinCode      string `json:"pin_code"`
	Login        string `json:"login"`
	Password     string `json:"password"`
	LaboratoryID uint   `json:"laboratory_id" binding:"required"`
}

// VerifyAccessHandler обрабатывает предъявление учётных данных на терминале
// @Summary		Проверка доступа на терминале
// @Description	Принимает PIN-код либо логин/пароль и идентификатор лаборатории, регистрирует вход или выход
// @Tags			terminal
// @Accept			json
// @Produce		json
// @Param			request	body		VerifyRequest			true	"Учетные данные и лаборатория"
// @Success		200		{object}	response.VerifyResponse	"Результат проверки"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		500		{object}	response.ErrorResponse	"Хранилище недоступно (SYSTEM_UNAVAILABLE)"
// @Router			/api/verify_access [post]
func VerifyAccessHandler(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Неверный формат запроса",
			Details: err.Error(),
		})
		return
	}

	var cred access.Credential
	var method string
	switch {
	case req.PinCode != "":
		cred = access.Credential{Pin: req.PinCode}
		method = models.MethodPin
	case req.Login != "" && req.Password != "":
		cred = access.Credential{Login: req.Login, Password: req.Password}
		method = models.MethodLogin
	default:
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Укажите PIN-код либо логин и пароль",
		})
		return
	}

	result, err := accessService.Attempt(cred, req.LaboratoryID, method, time.Now())
	if err != nil {
		// Отказ хранилища не превращаем в отказ в доступе:
		// терминал должен показать недоступность системы.
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "SYSTEM_UNAVAILABLE",
			Message: "Система временно недоступна",
		})
		return
	}

	if result.Action != access.ActionNone {
		ws.HubInstance.BroadcastAccess(result.LaboratoryID, ws.AccessMessage{
			EventType:    result.Action,
			EmployeeID:   result.Employee.ID,
			EmployeeName: result.Employee.FullName,
			LaboratoryID: result.LaboratoryID,
		})
	}

	c.JSON(http.StatusOK, response.VerifyResponse{
		Success: result.Success,
		Message: result.Message,
		Action:  result.Action,
	})
}
