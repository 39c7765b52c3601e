package entity

import (
	"time"

	"gorm.io/gorm"
)

type Base struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SoftDeleteBase struct {
	Base
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
