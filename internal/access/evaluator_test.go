package access

import (
	"testing"
	"time"

	"askud/internal/models"

	"github.com/stretchr/testify/assert"
)

// 15 января 2025 — среда (день недели 2 при нумерации с понедельника).
func wednesday(hour, min, sec int) time.Time {
	return time.Date(2025, time.January, 15, hour, min, sec, 0, time.Local)
}

func weekdayRule(days, start, end string) *models.AccessSchedule {
	return &models.AccessSchedule{
		EmployeeID:   7,
		LaboratoryID: 3,
		DaysOfWeek:   days,
		TimeStart:    start,
		TimeEnd:      end,
	}
}

func TestEvaluateRuleNoSchedule(t *testing.T) {
	verdict, err := EvaluateRule(nil, wednesday(12, 0, 0))
	assert.NoError(t, err)
	assert.False(t, verdict.Allowed)
	assert.Equal(t, DenyNoSchedule, verdict.Code)
}

func TestEvaluateRuleWindowBoundaries(t *testing.T) {
	rule := weekdayRule("0,1,2,3,4", "08:00", "18:00")

	// Границы окна включительные.
	for _, now := range []time.Time{wednesday(8, 0, 0), wednesday(18, 0, 0), wednesday(12, 30, 0)} {
		verdict, err := EvaluateRule(rule, now)
		assert.NoError(t, err)
		assert.True(t, verdict.Allowed, "ожидалось разрешение в %s", now.Format("15:04:05"))
	}

	for _, now := range []time.Time{wednesday(7, 59, 59), wednesday(18, 0, 1)} {
		verdict, err := EvaluateRule(rule, now)
		assert.NoError(t, err)
		assert.False(t, verdict.Allowed, "ожидался отказ в %s", now.Format("15:04:05"))
		assert.Equal(t, DenyOutsideWindow, verdict.Code)
		assert.Contains(t, verdict.Reason, "08:00")
		assert.Contains(t, verdict.Reason, "18:00")
	}
}

func TestEvaluateRuleWeekdayGating(t *testing.T) {
	// Право только на понедельник, среду и пятницу.
	rule := weekdayRule("0,2,4", "00:00", "23:59")

	// 14 января 2025 — вторник, отказ независимо от времени суток.
	tuesday := time.Date(2025, time.January, 14, 12, 0, 0, 0, time.Local)
	verdict, err := EvaluateRule(rule, tuesday)
	assert.NoError(t, err)
	assert.False(t, verdict.Allowed)
	assert.Equal(t, DenyDayNotAllowed, verdict.Code)

	verdict, err = EvaluateRule(rule, wednesday(12, 0, 0))
	assert.NoError(t, err)
	assert.True(t, verdict.Allowed)
}

func TestEvaluateRuleEmptyDaysDenyAll(t *testing.T) {
	// Пустой список дней — запрет во все дни, а не "без ограничений".
	rule := weekdayRule("", "00:00", "23:59")

	for day := 0; day < 7; day++ {
		now := time.Date(2025, time.January, 13+day, 12, 0, 0, 0, time.Local) // 13 января — понедельник
		verdict, err := EvaluateRule(rule, now)
		assert.NoError(t, err)
		assert.False(t, verdict.Allowed, "ожидался отказ в день %d", day)
		assert.Equal(t, DenyDayNotAllowed, verdict.Code)
	}
}

func TestEvaluateRuleSingleInstantWindow(t *testing.T) {
	// Совпадающие начало и конец разрешают ровно эту минуту.
	rule := weekdayRule("2", "09:30", "09:30")

	verdict, err := EvaluateRule(rule, wednesday(9, 30, 0))
	assert.NoError(t, err)
	assert.True(t, verdict.Allowed)

	verdict, err = EvaluateRule(rule, wednesday(9, 29, 59))
	assert.NoError(t, err)
	assert.False(t, verdict.Allowed)

	verdict, err = EvaluateRule(rule, wednesday(9, 30, 1))
	assert.NoError(t, err)
	assert.False(t, verdict.Allowed)
}

func TestEvaluateRuleMalformedTime(t *testing.T) {
	rule := weekdayRule("2", "восемь", "18:00")
	_, err := EvaluateRule(rule, wednesday(12, 0, 0))
	assert.Error(t, err)
}
