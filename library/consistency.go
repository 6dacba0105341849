package library

import (
	"context"
	"maps"
	"slices"

	"gorm.io/gorm"

	"github.com/andrewpaige1/cardbox-api/apperr"
	"github.com/andrewpaige1/cardbox-api/models"
)

// Multiplicity counts the occurrences of each distinct value of a list.
type Multiplicity[K comparable] map[K]int

func CountOf[K comparable](list []K) Multiplicity[K] {
	m := make(Multiplicity[K], len(list))
	for _, v := range list {
		m[v]++
	}
	return m
}

// ReferenceDeltas returns how the count of every id changes when a list
// holding prev is replaced by next. Ids whose count is unchanged are left out.
func ReferenceDeltas[K comparable](prev, next []K) map[K]int {
	deltas := make(map[K]int)
	for id, n := range CountOf(next) {
		deltas[id] += n
	}
	for id, n := range CountOf(prev) {
		deltas[id] -= n
	}
	for id, d := range deltas {
		if d == 0 {
			delete(deltas, id)
		}
	}
	return deltas
}

// applyReferenceDeltas adds each delta to the card's reference count. Rows
// are touched in id order so concurrent transactions lock them consistently.
func applyReferenceDeltas(tx *gorm.DB, deltas map[uint]int) error {
	for _, id := range slices.Sorted(maps.Keys(deltas)) {
		d := deltas[id]
		res := tx.Model(&models.Card{}).
			Where("id = ? AND reference_count + ? >= 0", id, d).
			UpdateColumn("reference_count", gorm.Expr("reference_count + ?", d))
		if res.Error != nil {
			return apperr.FromDB(res.Error, "")
		}
		if res.RowsAffected == 0 {
			if d > 0 {
				return apperr.Missing("Card does not exist")
			}
			return apperr.New(apperr.Internal, "reference count would become negative")
		}
	}
	return nil
}

// slotCardIDs returns the card ids of a set in slot order.
func slotCardIDs(tx *gorm.DB, setID uint) ([]uint, error) {
	var ids []uint
	err := tx.Model(&models.SetCard{}).
		Where("set_id = ?", setID).
		Order("position").
		Pluck("card_id", &ids).Error
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return ids, nil
}

func replaceSlots(tx *gorm.DB, setID uint, cardIDs []uint) error {
	if err := tx.Where("set_id = ?", setID).Delete(&models.SetCard{}).Error; err != nil {
		return apperr.FromDB(err, "")
	}
	if len(cardIDs) == 0 {
		return nil
	}

	slots := make([]models.SetCard, len(cardIDs))
	for i, id := range cardIDs {
		slots[i] = models.SetCard{SetID: setID, Position: i, CardID: id}
	}
	if err := tx.Create(&slots).Error; err != nil {
		return apperr.FromDB(err, "")
	}
	return nil
}

// reconcileSlots replaces the card list of a set and moves the reference
// counts of the cards involved by the difference in multiplicity.
func reconcileSlots(tx *gorm.DB, setID uint, next []uint) error {
	prev, err := slotCardIDs(tx, setID)
	if err != nil {
		return err
	}
	if err := applyReferenceDeltas(tx, ReferenceDeltas(prev, next)); err != nil {
		return err
	}
	return replaceSlots(tx, setID, next)
}

// publishCascade marks every card held by the set as published. Cards that
// are already published are left alone.
func publishCascade(tx *gorm.DB, setID uint) error {
	var ids []uint
	err := tx.Model(&models.SetCard{}).
		Where("set_id = ?", setID).
		Pluck("card_id", &ids).Error
	if err != nil {
		return apperr.FromDB(err, "")
	}
	if len(ids) == 0 {
		return nil
	}

	err = tx.Model(&models.Card{}).
		Where("id IN ? AND is_published = ?", ids, false).
		Update("is_published", true).Error
	return apperr.FromDB(err, "")
}

// removeFromFavorites drops the card from every favorites list citing it.
func removeFromFavorites(tx *gorm.DB, cardID uint) error {
	err := tx.Where("card_id = ?", cardID).Delete(&models.Favorite{}).Error
	return apperr.FromDB(err, "")
}

// Discrepancy is a card whose stored reference count disagrees with the
// number of set slots holding it.
type Discrepancy struct {
	CardID   string `json:"cardId"`
	Recorded int    `json:"recorded"`
	Actual   int    `json:"actual"`
}

// Audit recounts the set slots of every card and reports the cards whose
// reference count has drifted.
func (l *Library) Audit(ctx context.Context) ([]Discrepancy, error) {
	var out []Discrepancy
	err := l.db.WithContext(ctx).
		Model(&models.Card{}).
		Select("cards.public_id AS card_id, cards.reference_count AS recorded, COUNT(set_cards.id) AS actual").
		Joins("LEFT JOIN set_cards ON set_cards.card_id = cards.id").
		Group("cards.id, cards.public_id, cards.reference_count").
		Having("COUNT(set_cards.id) <> cards.reference_count").
		Order("cards.id").
		Scan(&out).Error
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return out, nil
}
