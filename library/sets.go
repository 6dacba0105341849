package library

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/andrewpaige1/cardbox-api/apperr"
	"github.com/andrewpaige1/cardbox-api/models"
)

var (
	errSetNotYours  = apperr.Denied("Access forbidden, this set is not yours")
	errSetPublished = apperr.Denied("Access forbidden, this set is published")
)

func (l *Library) CreateSet(ctx context.Context, ident models.Identity, name string) (models.Set, error) {
	in := setInput{Name: strings.TrimSpace(name)}
	if err := check(in); err != nil {
		return models.Set{}, err
	}

	var set models.Set
	err := l.transact(ctx, func(tx *gorm.DB) error {
		me, err := caller(tx, ident)
		if err != nil {
			return err
		}
		publicID, err := newPublicID()
		if err != nil {
			return apperr.Wrap(apperr.Internal, "failed to generate id", err)
		}

		set = models.Set{
			PublicID: publicID,
			AuthorID: me.ID,
			Author:   me.Username,
			Name:     in.Name,
			Version:  1,
			CardIDs:  []string{},
		}
		if err := tx.Create(&set).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		return nil
	})
	return set, err
}

// GetSet returns a set without its card list; SetCards reads the cards.
// Drafts are only visible to their author.
func (l *Library) GetSet(ctx context.Context, ident models.Identity, id string) (models.Set, error) {
	return readableSet(l.db.WithContext(ctx), ident, id)
}

// ListPublishedSets returns published sets whose name matches exactly. An
// empty name lists every published set.
func (l *Library) ListPublishedSets(ctx context.Context, name string) ([]models.Set, error) {
	db := l.db.WithContext(ctx)
	q := db.Where("is_published = ?", true)
	if name = strings.TrimSpace(name); name != "" {
		q = q.Where("name = ?", name)
	}

	sets := make([]models.Set, 0)
	if err := q.Order("id").Find(&sets).Error; err != nil {
		return nil, apperr.FromDB(err, "")
	}
	if err := attachCardIDs(db, sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// SetCards returns the cards of a set in slot order. A card held twice is
// returned twice.
func (l *Library) SetCards(ctx context.Context, ident models.Identity, id string) ([]models.Card, error) {
	db := l.db.WithContext(ctx)
	set, err := readableSet(db, ident, id)
	if err != nil {
		return nil, err
	}

	cards := make([]models.Card, 0)
	err = db.Select("cards.*").
		Joins("JOIN set_cards ON set_cards.card_id = cards.id").
		Where("set_cards.set_id = ?", set.ID).
		Order("set_cards.position").
		Find(&cards).Error
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return cards, nil
}

// UpdateSet renames a draft set and optionally publishes it. Publishing
// publishes every card the set holds in the same transaction.
func (l *Library) UpdateSet(ctx context.Context, ident models.Identity, id string, upd SetUpdate) (models.Set, error) {
	var name string
	if upd.Name != nil {
		name = strings.TrimSpace(*upd.Name)
		if err := check(setInput{Name: name}); err != nil {
			return models.Set{}, err
		}
	}

	var set models.Set
	err := l.transact(ctx, func(tx *gorm.DB) error {
		var err error
		set, err = draftSet(tx, ident, id)
		if err != nil {
			return err
		}

		changes := map[string]any{}
		if upd.Name != nil {
			changes["name"] = name
			set.Name = name
		}
		if upd.Publish {
			if err := publishCascade(tx, set.ID); err != nil {
				return err
			}
			changes["is_published"] = true
			set.IsPublished = true
		}
		if len(changes) > 0 {
			if err := tx.Model(&models.Set{}).Where("id = ?", set.ID).UpdateColumns(changes).Error; err != nil {
				return apperr.FromDB(err, "")
			}
		}

		sets := []models.Set{set}
		if err := attachCardIDs(tx, sets); err != nil {
			return err
		}
		set = sets[0]
		return nil
	})
	return set, err
}

func (l *Library) PublishSet(ctx context.Context, ident models.Identity, id string) (models.Set, error) {
	return l.UpdateSet(ctx, ident, id, SetUpdate{Publish: true})
}

// ReplaceSetCards makes cardIDs the card list of a draft set. Every id is
// checked before anything is written. Reference counts move by the
// difference between the old and new multiplicity of each card.
func (l *Library) ReplaceSetCards(ctx context.Context, ident models.Identity, id string, cardIDs []string) (models.Set, error) {
	var set models.Set
	err := l.transact(ctx, func(tx *gorm.DB) error {
		var err error
		set, err = draftSet(tx, ident, id)
		if err != nil {
			return err
		}
		if len(cardIDs) > models.MaxListSize {
			return apperr.AtCapacity("Too many cards in the set")
		}

		next, err := resolveCandidates(tx, set.AuthorID, cardIDs)
		if err != nil {
			return err
		}
		if err := reconcileSlots(tx, set.ID, next); err != nil {
			return err
		}

		set.CardIDs = append([]string{}, cardIDs...)
		return nil
	})
	return set, err
}

// DeleteSet releases every slot of a draft set and removes it.
func (l *Library) DeleteSet(ctx context.Context, ident models.Identity, id string) error {
	return l.transact(ctx, func(tx *gorm.DB) error {
		set, err := draftSet(tx, ident, id)
		if err != nil {
			return err
		}
		if err := reconcileSlots(tx, set.ID, nil); err != nil {
			return err
		}
		if err := tx.Delete(&models.Set{}, set.ID).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		return nil
	})
}

// draftSet loads a set the caller may edit and claims its version.
func draftSet(tx *gorm.DB, ident models.Identity, id string) (models.Set, error) {
	me, err := caller(tx, ident)
	if err != nil {
		return models.Set{}, err
	}
	set, err := findSet(tx, id)
	if err != nil {
		return models.Set{}, err
	}
	if set.AuthorID != me.ID {
		return models.Set{}, errSetNotYours
	}
	if set.IsPublished {
		return models.Set{}, errSetPublished
	}
	if err := claimVersion(tx, &models.Set{}, set.ID, set.Version); err != nil {
		return models.Set{}, err
	}
	set.Version++
	return set, nil
}

// readableSet loads a set for reading. Published sets are public.
func readableSet(db *gorm.DB, ident models.Identity, id string) (models.Set, error) {
	set, err := findSet(db, id)
	if err != nil {
		return models.Set{}, err
	}
	if set.IsPublished {
		return set, nil
	}
	me, err := caller(db, ident)
	if err != nil {
		return models.Set{}, err
	}
	if set.AuthorID != me.ID {
		return models.Set{}, apperr.Denied("Access forbidden, this private set is not yours")
	}
	return set, nil
}

// resolveCandidates maps public card ids onto row ids, failing if any card
// is missing or is a draft of someone other than owner.
func resolveCandidates(tx *gorm.DB, owner uint, cardIDs []string) ([]uint, error) {
	if len(cardIDs) == 0 {
		return nil, nil
	}

	distinct := make([]string, 0, len(cardIDs))
	for id := range CountOf(cardIDs) {
		distinct = append(distinct, id)
	}
	var cards []models.Card
	if err := tx.Where("public_id IN ?", distinct).Find(&cards).Error; err != nil {
		return nil, apperr.FromDB(err, "")
	}
	byPublicID := make(map[string]models.Card, len(cards))
	for _, c := range cards {
		byPublicID[c.PublicID] = c
	}

	next := make([]uint, len(cardIDs))
	for i, id := range cardIDs {
		card, ok := byPublicID[id]
		if !ok {
			return nil, apperr.Missing("Card does not exist")
		}
		if !card.IsPublished && card.AuthorID != owner {
			return nil, apperr.Denied("Access forbidden, you cannot add private cards that you do not own")
		}
		next[i] = card.ID
	}
	return next, nil
}

// attachCardIDs fills CardIDs of each set with its card public ids in slot
// order.
func attachCardIDs(db *gorm.DB, sets []models.Set) error {
	if len(sets) == 0 {
		return nil
	}
	ids := make([]uint, len(sets))
	index := make(map[uint]int, len(sets))
	for i := range sets {
		ids[i] = sets[i].ID
		index[sets[i].ID] = i
		sets[i].CardIDs = []string{}
	}

	var rows []struct {
		SetID    uint
		PublicID string
	}
	err := db.Table("set_cards").
		Select("set_cards.set_id, cards.public_id").
		Joins("JOIN cards ON cards.id = set_cards.card_id").
		Where("set_cards.set_id IN ?", ids).
		Order("set_cards.set_id, set_cards.position").
		Scan(&rows).Error
	if err != nil {
		return apperr.FromDB(err, "")
	}
	for _, row := range rows {
		i := index[row.SetID]
		sets[i].CardIDs = append(sets[i].CardIDs, row.PublicID)
	}
	return nil
}
