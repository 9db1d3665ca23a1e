package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"askud/internal/access"
	"askud/internal/config"
	"askud/internal/handlers"
	"askud/internal/models"
	"askud/internal/storage"
	"askud/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

var hubOnce sync.Once

func setupTestServer(t *testing.T) *httptest.Server {
	if os.Getenv("TEST_DB_HOST") == "" {
		_ = godotenv.Load("../../.env")
	}
	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("Тестовая база не настроена (TEST_DB_HOST)")
	}

	storage.ConnectTestingDatabase()
	storage.DB.Exec("TRUNCATE TABLE employees, laboratories, access_schedules, current_presences, access_events RESTART IDENTITY CASCADE;")

	if err := storage.DB.AutoMigrate(
		&models.Employee{},
		&models.Laboratory{},
		&models.AccessSchedule{},
		&models.CurrentPresence{},
		&models.AccessEvent{},
	); err != nil {
		t.Fatal("Ошибка при миграции:", err)
	}

	handlers.Init(access.NewService(storage.DB), config.Load())
	hubOnce.Do(func() {
		go ws.HubInstance.Run()
	})

	gin.SetMode(gin.TestMode)
	r := gin.Default()

	r.POST("/api/verify_access", handlers.VerifyAccessHandler)
	r.GET("/api/current_presence", handlers.CurrentPresenceHandler)
	// Админские маршруты регистрируются без middleware авторизации.
	r.POST("/api/admin/employees/:id/access", handlers.UpsertAccessRuleHandler)

	return httptest.NewServer(r)
}

func createTestFixtures(t *testing.T) (models.Employee, models.Laboratory) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	employee := models.Employee{
		Login:        "ivanov",
		PasswordHash: string(hash),
		PinCode:      "1234",
		FullName:     "Иванов Иван Иванович",
		IsActive:     true,
		UserType:     models.UserTypeEmployee,
	}
	assert.NoError(t, storage.DB.Create(&employee).Error)

	laboratory := models.Laboratory{Name: "Химическая лаборатория", Code: "CHEM-01", IsActive: true}
	assert.NoError(t, storage.DB.Create(&laboratory).Error)

	rule := models.AccessSchedule{
		EmployeeID:   employee.ID,
		LaboratoryID: laboratory.ID,
		DaysOfWeek:   "0,1,2,3,4,5,6",
		TimeStart:    "00:00",
		TimeEnd:      "23:59",
	}
	assert.NoError(t, storage.DB.Create(&rule).Error)

	return employee, laboratory
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	data, err := json.Marshal(body)
	assert.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data))
	assert.NoError(t, err)
	return res
}

func TestVerifyAccessFlow(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	_, laboratory := createTestFixtures(t)
	verifyURL := ts.URL + "/api/verify_access"

	// Вход по PIN-коду.
	res := postJSON(t, verifyURL, gin.H{"pin_code": "1234", "laboratory_id": laboratory.ID})
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var verify struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Action  string `json:"action"`
	}
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&verify))
	assert.True(t, verify.Success)
	assert.Equal(t, "entry", verify.Action)

	// Повторное предъявление — выход.
	res = postJSON(t, verifyURL, gin.H{"pin_code": "1234", "laboratory_id": laboratory.ID})
	defer res.Body.Close()
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&verify))
	assert.True(t, verify.Success)
	assert.Equal(t, "exit", verify.Action)

	// Неверный PIN: отказ без события в журнале.
	res = postJSON(t, verifyURL, gin.H{"pin_code": "0000", "laboratory_id": laboratory.ID})
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&verify))
	assert.False(t, verify.Success)
	assert.Equal(t, "none", verify.Action)

	var eventCount int64
	storage.DB.Model(&models.AccessEvent{}).Count(&eventCount)
	assert.Equal(t, int64(2), eventCount)
}

func TestVerifyAccessByLogin(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	_, laboratory := createTestFixtures(t)
	verifyURL := ts.URL + "/api/verify_access"

	res := postJSON(t, verifyURL, gin.H{
		"login":         "ivanov",
		"password":      "secret123",
		"laboratory_id": laboratory.ID,
	})
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var verify struct {
		Success bool   `json:"success"`
		Action  string `json:"action"`
	}
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&verify))
	assert.True(t, verify.Success)
	assert.Equal(t, "entry", verify.Action)

	var event models.AccessEvent
	assert.NoError(t, storage.DB.First(&event).Error)
	assert.Equal(t, models.MethodLogin, event.Method)
}

func TestUpsertAccessRuleReplacesExisting(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	employee, laboratory := createTestFixtures(t)
	ruleURL := fmt.Sprintf("%s/api/admin/employees/%d/access", ts.URL, employee.ID)

	// Повторная запись для той же пары обновляет правило, а не добавляет строку.
	res := postJSON(t, ruleURL, gin.H{
		"laboratory_id": laboratory.ID,
		"days_of_week":  []int{0, 2, 4},
		"time_start":    "09:00",
		"time_end":      "17:00",
	})
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var ruleCount int64
	storage.DB.Model(&models.AccessSchedule{}).
		Where("employee_id = ? AND laboratory_id = ?", employee.ID, laboratory.ID).
		Count(&ruleCount)
	assert.Equal(t, int64(1), ruleCount)

	var rule models.AccessSchedule
	assert.NoError(t, storage.DB.Where("employee_id = ? AND laboratory_id = ?", employee.ID, laboratory.ID).
		First(&rule).Error)
	assert.Equal(t, "0,2,4", rule.DaysOfWeek)
	assert.Equal(t, "09:00", rule.TimeStart)
	assert.Equal(t, "17:00", rule.TimeEnd)
}
