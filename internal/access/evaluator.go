package access

import (
	"errors"
	"fmt"
	"time"

	"askud/internal/models"

	"gorm.io/gorm"
)

// Коды отказа в доступе
const (
	DenyNoSchedule    = "NO_SCHEDULE"
	DenyDayNotAllowed = "DAY_NOT_ALLOWED"
	DenyOutsideWindow = "OUTSIDE_TIME_WINDOW"
)

// Verdict — результат проверки расписания: разрешение либо отказ с причиной.
type Verdict struct {
	Allowed bool
	Code    string
	Reason  string
	Rule    *models.AccessSchedule // Сработавшее правило (nil при отказе без правила)
}

func allow(rule *models.AccessSchedule) Verdict {
	return Verdict{Allowed: true, Rule: rule}
}

func deny(code, reason string, rule *models.AccessSchedule) Verdict {
	return Verdict{Code: code, Reason: reason, Rule: rule}
}

// EvaluateRule проверяет правило доступа на момент времени now. Функция
// чистая: ничего не пишет и не обращается к базе данных.
//
// Пустой список дней недели означает запрет во все дни: доступ требует
// явного перечисления дней. Границы временного окна включительные,
// правило с совпадающими началом и концом разрешает ровно эту минуту.
func EvaluateRule(rule *models.AccessSchedule, now time.Time) (Verdict, error) {
	if rule == nil {
		return deny(DenyNoSchedule, "Доступ в эту лабораторию не разрешён", nil), nil
	}

	if !rule.DayAllowed(models.Weekday(now)) {
		return deny(DenyDayNotAllowed, "Доступ в этот день недели не разрешён", rule), nil
	}

	start, err := models.ParseClock(rule.TimeStart)
	if err != nil {
		return Verdict{}, fmt.Errorf("некорректное время начала %q: %w", rule.TimeStart, err)
	}
	end, err := models.ParseClock(rule.TimeEnd)
	if err != nil {
		return Verdict{}, fmt.Errorf("некорректное время окончания %q: %w", rule.TimeEnd, err)
	}

	nowSec := now.Hour()*3600 + now.Minute()*60 + now.Second()
	startSec := start.Hour()*3600 + start.Minute()*60
	endSec := end.Hour()*3600 + end.Minute()*60

	if nowSec < startSec || nowSec > endSec {
		reason := fmt.Sprintf("Доступ разрешён с %s до %s", rule.TimeStart, rule.TimeEnd)
		return deny(DenyOutsideWindow, reason, rule), nil
	}

	return allow(rule), nil
}

// Evaluate находит правило для пары (сотрудник, лаборатория) и проверяет его.
// Отсутствие правила — обычный отказ, а не ошибка.
func (s *Service) Evaluate(employeeID, laboratoryID uint, now time.Time) (Verdict, error) {
	return evaluate(s.db, employeeID, laboratoryID, now)
}

func evaluate(db *gorm.DB, employeeID, laboratoryID uint, now time.Time) (Verdict, error) {
	var rule models.AccessSchedule
	err := db.Where("employee_id = ? AND laboratory_id = ?", employeeID, laboratoryID).
		First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return EvaluateRule(nil, now)
	}
	if err != nil {
		return Verdict{}, err
	}
	return EvaluateRule(&rule, now)
}
