// Package library holds the card, set and user stores and the rules that
// keep reference counts, publish flags and favorites consistent.
//
// Every mutating operation runs inside a single database transaction. Sets
// and users carry a version column that is claimed (compare-and-swap) at the
// start of a mutation, so concurrent writers on the same entity are retried
// instead of interleaving their counter updates.
package library

import (
	"errors"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"

	"github.com/andrewpaige1/cardbox-api/apperr"
	"github.com/andrewpaige1/cardbox-api/models"
)

const defaultMaxAttempts = 3

type Options struct {
	// MaxAttempts bounds retries after a version conflict. Zero means 3.
	MaxAttempts int
	// BcryptCost is passed to bcrypt. Zero means bcrypt.DefaultCost.
	BcryptCost int
}

type Library struct {
	db          *gorm.DB
	maxAttempts int
	bcryptCost  int
}

func New(db *gorm.DB, opts Options) *Library {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	return &Library{
		db:          db,
		maxAttempts: opts.MaxAttempts,
		bcryptCost:  opts.BcryptCost,
	}
}

func newPublicID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate public id: %w", err)
	}
	return id, nil
}

// caller resolves the identity to its user row. Anonymous callers and
// identities whose user no longer exists are unauthorized.
func caller(tx *gorm.DB, ident models.Identity) (models.User, error) {
	if ident.IsAnonymous() {
		return models.User{}, apperr.NoIdentity("Unauthorized, please login")
	}
	var user models.User
	err := tx.Where("public_id = ?", ident.UserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, apperr.NoIdentity("Unauthorized, please login")
	}
	if err != nil {
		return models.User{}, apperr.FromDB(err, "")
	}
	return user, nil
}

func findUser(tx *gorm.DB, username string) (models.User, error) {
	var user models.User
	if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, apperr.FromDB(err, "User does not exist")
	}
	return user, nil
}

func findCard(tx *gorm.DB, publicID string) (models.Card, error) {
	var card models.Card
	if err := tx.Where("public_id = ?", publicID).First(&card).Error; err != nil {
		return models.Card{}, apperr.FromDB(err, "Card does not exist")
	}
	return card, nil
}

func findSet(tx *gorm.DB, publicID string) (models.Set, error) {
	var set models.Set
	if err := tx.Where("public_id = ?", publicID).First(&set).Error; err != nil {
		return models.Set{}, apperr.FromDB(err, "Set does not exist")
	}
	return set, nil
}
