package access

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"askud/internal/models"
	"askud/internal/storage"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

// setupGateTest подключается к тестовой базе и наполняет её минимальным
// набором данных: два сотрудника, две лаборатории, одно правило доступа.
func setupGateTest(t *testing.T) (*Service, models.Employee, models.Employee, models.Laboratory, models.Laboratory) {
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

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	ivanov := models.Employee{
		Login:        "ivanov",
		PasswordHash: string(hash),
		PinCode:      "1234",
		FullName:     "Иванов Иван Иванович",
		IsActive:     true,
		UserType:     models.UserTypeEmployee,
	}
	petrov := models.Employee{
		Login:        "petrov",
		PasswordHash: string(hash),
		PinCode:      "5678",
		FullName:     "Петров Пётр Петрович",
		IsActive:     true,
		UserType:     models.UserTypeEmployee,
	}
	assert.NoError(t, storage.DB.Create(&ivanov).Error)
	assert.NoError(t, storage.DB.Create(&petrov).Error)

	chem := models.Laboratory{Name: "Химическая лаборатория", Code: "CHEM-01", IsActive: true}
	bio := models.Laboratory{Name: "Биологическая лаборатория", Code: "BIO-01", IsActive: true}
	assert.NoError(t, storage.DB.Create(&chem).Error)
	assert.NoError(t, storage.DB.Create(&bio).Error)

	rule := models.AccessSchedule{
		EmployeeID:   ivanov.ID,
		LaboratoryID: chem.ID,
		DaysOfWeek:   "0,1,2,3,4,5,6",
		TimeStart:    "00:00",
		TimeEnd:      "23:59",
	}
	assert.NoError(t, storage.DB.Create(&rule).Error)

	return NewService(storage.DB), ivanov, petrov, chem, bio
}

func TestAttemptEntryExitRoundTrip(t *testing.T) {
	svc, ivanov, _, chem, bio := setupGateTest(t)
	now := time.Now()

	result, err := svc.Attempt(Credential{Pin: "1234"}, chem.ID, models.MethodPin, now)
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, ActionEntry, result.Action)
	assert.Equal(t, chem.ID, result.LaboratoryID)

	var presence models.CurrentPresence
	assert.NoError(t, storage.DB.Where("employee_id = ?", ivanov.ID).First(&presence).Error)
	assert.Equal(t, chem.ID, presence.LaboratoryID)
	assert.False(t, presence.ExpectedExitTime.IsZero())

	// Предъявление на терминале другой лаборатории означает выход
	// из той, где сотрудник находится.
	result, err = svc.Attempt(Credential{Pin: "1234"}, bio.ID, models.MethodPin, now.Add(5*time.Minute))
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, ActionExit, result.Action)
	assert.Equal(t, chem.ID, result.LaboratoryID)

	var presenceCount int64
	storage.DB.Model(&models.CurrentPresence{}).Where("employee_id = ?", ivanov.ID).Count(&presenceCount)
	assert.Equal(t, int64(0), presenceCount)

	events, err := svc.Events(EventFilter{EmployeeID: ivanov.ID})
	assert.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, models.EventEntry, events[0].EventType)
	assert.True(t, events[0].Success)
	assert.Equal(t, models.EventExit, events[1].EventType)
	assert.True(t, events[1].Success)
	// Выход записан по лаборатории, где сотрудник находился, а не по терминалу.
	assert.Equal(t, chem.ID, events[1].LaboratoryID)
}

func TestAttemptUnknownPinWritesNoEvent(t *testing.T) {
	svc, _, _, chem, _ := setupGateTest(t)

	result, err := svc.Attempt(Credential{Pin: "0000"}, chem.ID, models.MethodPin, time.Now())
	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, ActionNone, result.Action)

	var eventCount int64
	storage.DB.Model(&models.AccessEvent{}).Count(&eventCount)
	assert.Equal(t, int64(0), eventCount)
}

func TestAttemptInactiveEmployeeDenied(t *testing.T) {
	svc, ivanov, _, chem, _ := setupGateTest(t)
	assert.NoError(t, storage.DB.Model(&ivanov).Update("is_active", false).Error)

	result, err := svc.Attempt(Credential{Pin: "1234"}, chem.ID, models.MethodPin, time.Now())
	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, ActionNone, result.Action)
	// Сообщение не отличает деактивированного сотрудника от несуществующего PIN.
	assert.Equal(t, "Неверные учётные данные", result.Message)
}

func TestAttemptNoScheduleDenied(t *testing.T) {
	svc, _, petrov, chem, _ := setupGateTest(t)

	result, err := svc.Attempt(Credential{Pin: "5678"}, chem.ID, models.MethodPin, time.Now())
	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, ActionNone, result.Action)

	// Отказ по расписанию записывается в журнал, в отличие от
	// нераспознанных учётных данных.
	events, err := svc.Events(EventFilter{EmployeeID: petrov.ID})
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.False(t, events[0].Success)
	assert.Equal(t, models.EventEntry, events[0].EventType)
	assert.NotEmpty(t, events[0].Reason)

	var presenceCount int64
	storage.DB.Model(&models.CurrentPresence{}).Count(&presenceCount)
	assert.Equal(t, int64(0), presenceCount)
}

func TestAttemptLoginCredential(t *testing.T) {
	svc, _, _, chem, _ := setupGateTest(t)

	result, err := svc.Attempt(Credential{Login: "ivanov", Password: "secret123"}, chem.ID, models.MethodLogin, time.Now())
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, ActionEntry, result.Action)

	result, err = svc.Attempt(Credential{Login: "ivanov", Password: "wrong"}, chem.ID, models.MethodLogin, time.Now())
	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, ActionNone, result.Action)
}

func TestAttemptConcurrentSameEmployee(t *testing.T) {
	svc, ivanov, _, chem, _ := setupGateTest(t)
	now := time.Now()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	results := make([]Result, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Attempt(Credential{Pin: "1234"}, chem.ID, models.MethodPin, now)
		}(i)
	}
	wg.Wait()

	for i := 0; i < attempts; i++ {
		assert.NoError(t, errs[i], fmt.Sprintf("попытка %d завершилась ошибкой", i))
	}

	// Не более одной записи присутствия при любом исходе гонки.
	var presenceCount int64
	storage.DB.Model(&models.CurrentPresence{}).Where("employee_id = ?", ivanov.ID).Count(&presenceCount)
	assert.LessOrEqual(t, presenceCount, int64(1))

	// Ни одна попытка не потеряна: каждая дала entry, exit или отказ,
	// и журнал согласован с итоговым присутствием.
	events, err := svc.Events(EventFilter{EmployeeID: ivanov.ID})
	assert.NoError(t, err)
	assert.Len(t, events, attempts)

	var entries, exits int64
	for _, e := range events {
		assert.True(t, e.Success)
		switch e.EventType {
		case models.EventEntry:
			entries++
		case models.EventExit:
			exits++
		}
	}
	assert.Equal(t, presenceCount, entries-exits)
}
