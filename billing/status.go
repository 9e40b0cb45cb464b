package billing

import (
	"time"

	"student-track-backend/models"
)

type Status string

const (
	StatusPaid    Status = "PAID"
	StatusPending Status = "PENDING"
	StatusBehind  Status = "BEHIND"
)

type Result struct {
	Status        Status `json:"status"`
	PendingAmount int    `json:"pendingAmount"`
}

// Evaluate вычисляет платежный статус студента на момент now.
// totalCost - суммарная стоимость текущих групп студента,
// расчетный период - календарный месяц в UTC.
// Чистая функция без побочных эффектов.
func Evaluate(totalCost int, payments []models.Payment, now time.Time, checkArrears bool) Result {
	now = now.UTC()

	result := Result{Status: StatusPaid, PendingAmount: 0}

	paidThisMonth := sumForMonth(payments, now.Year(), now.Month())
	if paidThisMonth < totalCost {
		result = Result{
			Status:        StatusPending,
			PendingAmount: totalCost - paidThisMonth,
		}
	}

	// Режим контроля задолженности: недоплата за предыдущий месяц
	// переводит статус в BEHIND. Стоимость групп за прошлый месяц не
	// хранится, поэтому базой служит текущая totalCost.
	if checkArrears {
		prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		paidPrevMonth := sumForMonth(payments, prev.Year(), prev.Month())
		if paidPrevMonth < totalCost {
			result.Status = StatusBehind
			result.PendingAmount += totalCost - paidPrevMonth
		}
	}

	return result
}

func sumForMonth(payments []models.Payment, year int, month time.Month) int {
	total := 0
	for _, payment := range payments {
		paidAt := payment.PaidAt.UTC()
		if paidAt.Year() == year && paidAt.Month() == month {
			total += payment.Amount
		}
	}
	return total
}
