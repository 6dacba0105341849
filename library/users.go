package library

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrewpaige1/cardbox-api/apperr"
	"github.com/andrewpaige1/cardbox-api/auth"
	"github.com/andrewpaige1/cardbox-api/models"
)

var errUsernameTaken = apperr.Conflicting("Username is already taken")

// Register creates a new box. The username is trimmed before validation.
func (l *Library) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := check(in); err != nil {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(in.Password, l.bcryptCost)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "failed to hash password", err)
	}
	publicID, err := newPublicID()
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "failed to generate id", err)
	}

	user := models.User{
		PublicID:     publicID,
		Username:     in.Username,
		PasswordHash: hash,
		Icon:         in.Icon,
	}

	err = l.transact(ctx, func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("username = ?", in.Username).Count(&taken).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		if taken > 0 {
			return errUsernameTaken
		}
		if err := tx.Create(&user).Error; err != nil {
			if apperr.KindOf(apperr.FromDB(err, "")) == apperr.Conflict {
				return errUsernameTaken
			}
			return apperr.FromDB(err, "")
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Authenticate checks a username and password pair.
func (l *Library) Authenticate(ctx context.Context, username, password string) (models.Identity, error) {
	mismatch := apperr.NoIdentity("Username and password do not match")

	user, err := findUser(l.db.WithContext(ctx), strings.TrimSpace(username))
	if apperr.KindOf(err) == apperr.NotFound {
		return models.Identity{}, mismatch
	}
	if err != nil {
		return models.Identity{}, err
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return models.Identity{}, mismatch
		}
		return models.Identity{}, apperr.Wrap(apperr.Internal, "failed to check password", err)
	}
	return models.Identity{UserID: user.PublicID, Username: user.Username}, nil
}

func (l *Library) Profile(ctx context.Context, username string) (models.User, error) {
	return findUser(l.db.WithContext(ctx), username)
}

// CurrentUser returns the user behind a signed-in identity.
func (l *Library) CurrentUser(ctx context.Context, ident models.Identity) (models.User, error) {
	return caller(l.db.WithContext(ctx), ident)
}

func (l *Library) UpdateIcon(ctx context.Context, ident models.Identity, username string, icon int) (models.User, error) {
	if err := check(iconInput{Icon: icon}); err != nil {
		return models.User{}, err
	}

	var user models.User
	err := l.transact(ctx, func(tx *gorm.DB) error {
		me, err := ownBox(tx, ident, username)
		if err != nil {
			return err
		}
		if err := claimVersion(tx, &models.User{}, me.ID, me.Version); err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", me.ID).UpdateColumn("icon", icon).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		me.Icon = icon
		user = me
		return nil
	})
	return user, err
}

// ToggleFavorite adds the card to the owner's favorites, or removes it when it
// is already there. It returns the resulting favorites in order.
func (l *Library) ToggleFavorite(ctx context.Context, ident models.Identity, username, cardID string) ([]string, error) {
	var favs []string
	err := l.transact(ctx, func(tx *gorm.DB) error {
		me, err := ownBox(tx, ident, username)
		if err != nil {
			return err
		}
		if err := claimVersion(tx, &models.User{}, me.ID, me.Version); err != nil {
			return err
		}

		// the share lock holds off a concurrent DeleteCard until we commit
		card, err := findCard(tx.Clauses(clause.Locking{Strength: "SHARE"}), cardID)
		if err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND card_id = ?", me.ID, card.ID).Delete(&models.Favorite{})
		if res.Error != nil {
			return apperr.FromDB(res.Error, "")
		}

		if res.RowsAffected == 0 {
			var count int64
			err := tx.Model(&models.Favorite{}).
				Joins("JOIN cards ON cards.id = favorites.card_id").
				Where("favorites.user_id = ?", me.ID).
				Count(&count).Error
			if err != nil {
				return apperr.FromDB(err, "")
			}
			if count >= models.MaxListSize {
				return apperr.AtCapacity("Favorites list is full")
			}
			if !card.IsPublished && card.AuthorID != me.ID {
				return apperr.Denied("Access forbidden, this card is private")
			}

			var last struct{ Position *int }
			if err := tx.Model(&models.Favorite{}).Select("MAX(position) AS position").Where("user_id = ?", me.ID).Scan(&last).Error; err != nil {
				return apperr.FromDB(err, "")
			}
			next := 0
			if last.Position != nil {
				next = *last.Position + 1
			}
			fav := models.Favorite{UserID: me.ID, CardID: card.ID, Position: next}
			if err := tx.Create(&fav).Error; err != nil {
				return apperr.FromDB(err, "")
			}
		}

		favs, err = favoriteIDs(tx, me.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return favs, nil
}

// FavoriteIDs returns the public ids of the caller's favorites in order.
func (l *Library) FavoriteIDs(ctx context.Context, ident models.Identity) ([]string, error) {
	db := l.db.WithContext(ctx)
	me, err := caller(db, ident)
	if err != nil {
		return nil, err
	}
	return favoriteIDs(db, me.ID)
}

// Favorites returns the caller's favorite cards in order. Favorites whose card
// no longer exists are skipped.
func (l *Library) Favorites(ctx context.Context, ident models.Identity) ([]models.Card, error) {
	db := l.db.WithContext(ctx)
	me, err := caller(db, ident)
	if err != nil {
		return nil, err
	}

	cards := make([]models.Card, 0)
	err = db.Select("cards.*").
		Joins("JOIN favorites ON favorites.card_id = cards.id").
		Where("favorites.user_id = ?", me.ID).
		Order("favorites.position").
		Find(&cards).Error
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return cards, nil
}

// UserCards lists the cards of a box. The owner sees drafts too.
func (l *Library) UserCards(ctx context.Context, ident models.Identity, username string) ([]models.Card, error) {
	db := l.db.WithContext(ctx)
	user, err := findUser(db, username)
	if err != nil {
		return nil, err
	}

	q := db.Where("author_id = ?", user.ID)
	if ident.UserID != user.PublicID {
		q = q.Where("is_published = ?", true)
	}
	cards := make([]models.Card, 0)
	if err := q.Order("id").Find(&cards).Error; err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return cards, nil
}

// UserSets lists the sets of a box. The owner sees drafts too.
func (l *Library) UserSets(ctx context.Context, ident models.Identity, username string) ([]models.Set, error) {
	db := l.db.WithContext(ctx)
	user, err := findUser(db, username)
	if err != nil {
		return nil, err
	}

	q := db.Where("author_id = ?", user.ID)
	if ident.UserID != user.PublicID {
		q = q.Where("is_published = ?", true)
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

// ownBox resolves the caller and checks that username names their own box.
func ownBox(tx *gorm.DB, ident models.Identity, username string) (models.User, error) {
	me, err := caller(tx, ident)
	if err != nil {
		return models.User{}, err
	}
	if me.Username == username {
		return me, nil
	}
	if _, err := findUser(tx, username); err != nil {
		return models.User{}, err
	}
	return models.User{}, apperr.Denied("Access forbidden, this box is not yours")
}

func favoriteIDs(tx *gorm.DB, userID uint) ([]string, error) {
	ids := make([]string, 0)
	err := tx.Model(&models.Favorite{}).
		Joins("JOIN cards ON cards.id = favorites.card_id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.position").
		Pluck("cards.public_id", &ids).Error
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return ids, nil
}
