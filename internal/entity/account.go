package entity

import "time"

type Account struct {
	Base
	Email    string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
}

type RefreshToken struct {
	UserID string
	User   Account `gorm:"foreignKey:UserID"`

	Family     string `gorm:"unique"`
	Counter    uint64
	Expiration time.Time
}
