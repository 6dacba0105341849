package library

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/andrewpaige1/cardbox-api/apperr"
	"github.com/andrewpaige1/cardbox-api/models"
)

var (
	errCardNotYours  = apperr.Denied("Access forbidden, this card is not yours")
	errCardPublished = apperr.Denied("Access forbidden, this card is published")
)

// CreateCard stores a new draft card owned by the caller.
func (l *Library) CreateCard(ctx context.Context, ident models.Identity, in CardInput) (models.Card, error) {
	in.Word = strings.TrimSpace(in.Word)
	in.Definition = strings.TrimSpace(in.Definition)
	if err := check(in); err != nil {
		return models.Card{}, err
	}

	var card models.Card
	err := l.transact(ctx, func(tx *gorm.DB) error {
		me, err := caller(tx, ident)
		if err != nil {
			return err
		}
		publicID, err := newPublicID()
		if err != nil {
			return apperr.Wrap(apperr.Internal, "failed to generate id", err)
		}

		card = models.Card{
			PublicID:   publicID,
			AuthorID:   me.ID,
			Author:     me.Username,
			Word:       in.Word,
			Definition: in.Definition,
		}
		if err := tx.Create(&card).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		return nil
	})
	return card, err
}

// GetCard returns a card to its author. Everyone else reads cards through the
// published listings.
func (l *Library) GetCard(ctx context.Context, ident models.Identity, id string) (models.Card, error) {
	db := l.db.WithContext(ctx)
	me, err := caller(db, ident)
	if err != nil {
		return models.Card{}, err
	}
	card, err := findCard(db, id)
	if err != nil {
		return models.Card{}, err
	}
	if card.AuthorID != me.ID {
		return models.Card{}, errCardNotYours
	}
	return card, nil
}

// ListPublishedCards returns published cards whose word matches exactly. An
// empty word lists every published card.
func (l *Library) ListPublishedCards(ctx context.Context, word string) ([]models.Card, error) {
	q := l.db.WithContext(ctx).Where("is_published = ?", true)
	if word = strings.TrimSpace(word); word != "" {
		q = q.Where("word = ?", word)
	}

	cards := make([]models.Card, 0)
	if err := q.Order("id").Find(&cards).Error; err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return cards, nil
}

// UpdateCard edits a draft card. Setting Publish makes the card immutable.
func (l *Library) UpdateCard(ctx context.Context, ident models.Identity, id string, upd CardUpdate) (models.Card, error) {
	var in CardInput
	if upd.Word != nil {
		in.Word = strings.TrimSpace(*upd.Word)
	}
	if upd.Definition != nil {
		in.Definition = strings.TrimSpace(*upd.Definition)
	}
	if err := check(in); err != nil {
		return models.Card{}, err
	}

	var card models.Card
	err := l.transact(ctx, func(tx *gorm.DB) error {
		me, err := caller(tx, ident)
		if err != nil {
			return err
		}
		card, err = findCard(tx, id)
		if err != nil {
			return err
		}
		if card.AuthorID != me.ID {
			return errCardNotYours
		}
		if card.IsPublished {
			return errCardPublished
		}

		changes := map[string]any{"updated_at": time.Now()}
		if upd.Word != nil {
			changes["word"] = in.Word
			card.Word = in.Word
		}
		if upd.Definition != nil {
			changes["definition"] = in.Definition
			card.Definition = in.Definition
		}
		if upd.Publish {
			changes["is_published"] = true
			card.IsPublished = true
		}

		// a set publish may have published the card since it was read
		res := tx.Model(&models.Card{}).
			Where("id = ? AND is_published = ?", card.ID, false).
			Updates(changes)
		if res.Error != nil {
			return apperr.FromDB(res.Error, "")
		}
		if res.RowsAffected == 0 {
			return errCardPublished
		}
		return nil
	})
	return card, err
}

// DeleteCard removes a draft card that no set holds, together with every
// favorite citing it.
func (l *Library) DeleteCard(ctx context.Context, ident models.Identity, id string) (models.Card, error) {
	var card models.Card
	err := l.transact(ctx, func(tx *gorm.DB) error {
		me, err := caller(tx, ident)
		if err != nil {
			return err
		}
		card, err = findCard(tx, id)
		if err != nil {
			return err
		}
		if card.AuthorID != me.ID {
			return errCardNotYours
		}
		if card.IsPublished {
			return errCardPublished
		}
		if card.ReferenceCount > 0 {
			return apperr.Conflicting("Card is still part of a set")
		}

		if err := removeFromFavorites(tx, card.ID); err != nil {
			return err
		}

		res := tx.Where("id = ? AND is_published = ? AND reference_count = 0", card.ID, false).
			Delete(&models.Card{})
		if res.Error != nil {
			return apperr.FromDB(res.Error, "")
		}
		if res.RowsAffected == 0 {
			return apperr.Conflicting("Card changed while it was being deleted")
		}
		return nil
	})
	return card, err
}
