package access

import (
	"errors"
	"time"

	"askud/internal/models"

	"gorm.io/gorm"
)

// Действия, выполненные по результату попытки прохода
const (
	ActionEntry = "entry"
	ActionExit  = "exit"
	ActionNone  = "none"
)

// Credential — предъявленные на терминале учётные данные:
// либо PIN-код, либо пара логин/пароль.
type Credential struct {
	Pin      string
	Login    string
	Password string
}

// Result — итог обработки попытки прохода.
type Result struct {
	Success      bool
	Message      string
	Action       string
	Employee     *models.Employee
	LaboratoryID uint // Лаборатория, к которой относится действие: при выходе это лаборатория, где сотрудник находился
}

// Attempt обрабатывает предъявление учётных данных на терминале лаборатории.
//
// Автомат присутствия двухпозиционный и ведётся по сотруднику: если запись
// CurrentPresence есть — любое предъявление означает выход из той лаборатории,
// где сотрудник находится, независимо от терминала; если записи нет —
// попытка входа с проверкой расписания. Переключение присутствия и запись
// события журнала выполняются в одной транзакции под мьютексом сотрудника.
//
// Нераспознанные учётные данные событие в журнал не пишут: их не к кому
// привязать. Ошибка хранилища прерывает всю попытку, проход при этом
// не разрешается.
func (s *Service) Attempt(cred Credential, laboratoryID uint, method string, now time.Time) (Result, error) {
	var employee *models.Employee
	var err error

	if cred.Pin != "" {
		employee, err = s.ResolveByPin(cred.Pin)
	} else {
		employee, err = s.ResolveByLogin(cred.Login, cred.Password)
	}
	if errors.Is(err, ErrInvalidCredential) {
		return Result{Message: "Неверные учётные данные", Action: ActionNone}, nil
	}
	if err != nil {
		return Result{}, err
	}

	lock := s.lockFor(employee.ID)
	lock.Lock()
	defer lock.Unlock()

	var result Result
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var presence models.CurrentPresence
		findErr := tx.Where("employee_id = ?", employee.ID).First(&presence).Error

		switch {
		case findErr == nil:
			// Сотрудник внутри: регистрируем выход из занимаемой лаборатории.
			if err := tx.Delete(&presence).Error; err != nil {
				return err
			}
			if err := appendEvent(tx, employee.ID, presence.LaboratoryID, models.EventExit, true, "", method, now); err != nil {
				return err
			}
			result = Result{
				Success:      true,
				Message:      "Выход выполнен",
				Action:       ActionExit,
				Employee:     employee,
				LaboratoryID: presence.LaboratoryID,
			}
			return nil

		case errors.Is(findErr, gorm.ErrRecordNotFound):
			return s.enter(tx, employee, laboratoryID, method, now, &result)

		default:
			return findErr
		}
	})

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Параллельная попытка того же сотрудника успела переключить
		// присутствие между нашими чтением и вставкой. Перечитываем
		// состояние и сообщаем его, ничего не теряя и не дублируя.
		return s.reportAfterRace(employee)
	}
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

func (s *Service) enter(tx *gorm.DB, employee *models.Employee, laboratoryID uint, method string, now time.Time, result *Result) error {
	verdict, err := evaluate(tx, employee.ID, laboratoryID, now)
	if err != nil {
		return err
	}

	if !verdict.Allowed {
		if err := appendEvent(tx, employee.ID, laboratoryID, models.EventEntry, false, verdict.Reason, method, now); err != nil {
			return err
		}
		*result = Result{
			Message:      verdict.Reason,
			Action:       ActionNone,
			Employee:     employee,
			LaboratoryID: laboratoryID,
		}
		return nil
	}

	end, err := models.ParseClock(verdict.Rule.TimeEnd)
	if err != nil {
		return err
	}
	expectedExit := time.Date(now.Year(), now.Month(), now.Day(), end.Hour(), end.Minute(), 0, 0, now.Location())

	presence := models.CurrentPresence{
		EmployeeID:       employee.ID,
		LaboratoryID:     laboratoryID,
		EntryTime:        now,
		ExpectedExitTime: expectedExit,
	}
	if err := tx.Create(&presence).Error; err != nil {
		return err
	}
	if err := appendEvent(tx, employee.ID, laboratoryID, models.EventEntry, true, "", method, now); err != nil {
		return err
	}

	*result = Result{
		Success:      true,
		Message:      "Вход разрешён",
		Action:       ActionEntry,
		Employee:     employee,
		LaboratoryID: laboratoryID,
	}
	return nil
}

func (s *Service) reportAfterRace(employee *models.Employee) (Result, error) {
	var presence models.CurrentPresence
	err := s.db.Where("employee_id = ?", employee.ID).First(&presence).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{}, err
	}
	if err == nil {
		return Result{
			Message:      "Сотрудник уже находится в лаборатории",
			Action:       ActionNone,
			Employee:     employee,
			LaboratoryID: presence.LaboratoryID,
		}, nil
	}
	return Result{
		Message:  "Попытка уже обработана другим терминалом",
		Action:   ActionNone,
		Employee: employee,
	}, nil
}
