package entity

import (
	"database/sql"
	"time"

	"github.com/mediashare/backend/pkg/enum"
)

type Tier string

var (
	TierFree         = enum.New(Tier("free"))
	TierPremium      = enum.New(Tier("premium"))
	TierProfessional = enum.New(Tier("professional"))
	TierElite        = enum.New(Tier("elite"))
)

type AccountType string

var (
	AccountCreator = enum.New(AccountType("creator"))
	AccountMember  = enum.New(AccountType("member"))
)

// Profile is provisioned together with the Account sharing its ID. Role and
// AccountType always hold the same value.
type Profile struct {
	ID      string  `gorm:"primarykey"`
	Account Account `gorm:"foreignKey:ID"`

	Email         string `gorm:"unique;not null"`
	Name          string `gorm:"not null"`
	Tier          Tier   `gorm:"default:free"`
	LoyaltyPoints uint64
	AvatarURL     sql.NullString
	AccountType   AccountType `gorm:"default:member"`
	Role          AccountType `gorm:"default:member"`
	IsVerified    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
