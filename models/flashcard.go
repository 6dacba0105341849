package models

import "time"

// Card is a word/definition pair. Once published it is immutable.
type Card struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	PublicID    string `gorm:"size:32;uniqueIndex;not null" json:"id"`
	AuthorID    uint   `gorm:"not null;index:idx_cards_author_published" json:"-"`
	Author      string `gorm:"size:20;not null" json:"author"`
	Word        string `gorm:"size:50;index" json:"word"`
	Definition  string `gorm:"size:250" json:"definition"`
	IsPublished bool   `gorm:"not null;default:false;index:idx_cards_author_published" json:"isPublished"`

	// number of set slots currently holding this card
	ReferenceCount int `gorm:"column:reference_count;not null;default:0" json:"references"`

	Favorites []Favorite `gorm:"foreignKey:CardID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
