package models

import (
	"time"
)

// Платеж неизменяемый после создания - его можно только удалить.
// GroupCost - снимок суммарной стоимости групп студента на момент оплаты,
// хранится только для истории и не участвует в расчете статуса.
type Payment struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Amount    int       `json:"amount" gorm:"not null"`
	PaidAt    time.Time `json:"paid_at" gorm:"not null"`
	GroupCost int       `json:"group_cost"`
	StudentID uint      `json:"student_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}
