package models

import "time"

const MaxIcon = 8

// User represents a registered box owner
type User struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	PublicID     string     `gorm:"size:32;uniqueIndex;not null" json:"id"`
	Username     string     `gorm:"size:20;uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Icon         int        `gorm:"not null;default:0" json:"icon"`
	Version      int        `gorm:"not null;default:1" json:"-"`
	Favorites    []Favorite `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

// Favorite is one slot of a user's ordered favorites list.
type Favorite struct {
	ID       uint `gorm:"primaryKey"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_favorites_user_card"`
	CardID   uint `gorm:"not null;uniqueIndex:idx_favorites_user_card;index"`
	Position int  `gorm:"not null"`
}

// Identity is the caller resolved from the session cookie. The zero value is
// the anonymous caller.
type Identity struct {
	UserID   string
	Username string
}

func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}
