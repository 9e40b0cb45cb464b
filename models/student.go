package models

import (
	"time"
)

type Student struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"not null;size:100"`
	Phone     string    `json:"phone" gorm:"not null;size:20"`
	Groups    []Group   `json:"groups" gorm:"many2many:students_groups"`
	Payments  []Payment `json:"payments" gorm:"foreignKey:StudentID"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Student) TableName() string {
	return "students"
}

// EnsureLists заменяет nil-срезы пустыми, чтобы JSON всегда отдавал массивы
func (s *Student) EnsureLists() {
	if s.Groups == nil {
		s.Groups = []Group{}
	}
	if s.Payments == nil {
		s.Payments = []Payment{}
	}
	for i := range s.Groups {
		if s.Groups[i].Students == nil {
			s.Groups[i].Students = []Student{}
		}
	}
}
