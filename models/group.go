package models

import (
	"time"
)

type Group struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title     string    `json:"title" gorm:"not null;size:100"`
	Cost      int       `json:"cost" gorm:"not null;default:0"`
	Students  []Student `json:"students" gorm:"many2many:students_groups"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Group) TableName() string {
	return "groups"
}

// EnsureLists заменяет nil-срезы пустыми, чтобы JSON всегда отдавал массивы
func (g *Group) EnsureLists() {
	if g.Students == nil {
		g.Students = []Student{}
	}
	for i := range g.Students {
		g.Students[i].EnsureLists()
	}
}
