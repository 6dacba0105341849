package models

import "time"

const MaxListSize = 50

// Set represents an ordered collection of cards
type Set struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	PublicID    string    `gorm:"size:32;uniqueIndex;not null" json:"id"`
	AuthorID    uint      `gorm:"not null;index" json:"-"`
	Author      string    `gorm:"size:20;not null" json:"author"`
	Name        string    `gorm:"not null;size:50;index" json:"name"`
	IsPublished bool      `gorm:"not null;default:false;index" json:"isPublished"`
	Version     int       `gorm:"not null;default:1" json:"-"`
	Slots       []SetCard `gorm:"foreignKey:SetID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// public ids of the cards in slot order, filled by the library
	CardIDs []string `gorm:"-" json:"cards"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Set) TableName() string {
	return "card_sets"
}

// Summary drops the card list.
func (s Set) Summary() SetSummary {
	return SetSummary{ID: s.PublicID, Author: s.Author, Name: s.Name, IsPublished: s.IsPublished}
}

type SetSummary struct {
	ID          string `json:"id"`
	Author      string `json:"author"`
	Name        string `json:"name"`
	IsPublished bool   `json:"isPublished"`
}

// SetCard is one slot of a set. A card may occupy several slots of the same set.
type SetCard struct {
	ID       uint `gorm:"primaryKey"`
	SetID    uint `gorm:"not null;uniqueIndex:idx_set_cards_slot"`
	Position int  `gorm:"not null;uniqueIndex:idx_set_cards_slot"`
	CardID   uint `gorm:"not null;index"`
}
