package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andrewpaige1/cardbox-api/auth"
	"github.com/andrewpaige1/cardbox-api/config"
	"github.com/andrewpaige1/cardbox-api/library"
	"github.com/andrewpaige1/cardbox-api/models"
)

const (
	TestSecret   = "test-secret-key"
	TestIssuer   = "cardbox-test"
	TestAudience = "cardbox-test-web"
	TestPassword = "hunter22"
)

// SetupTestDB creates a fresh sqlite database with the full schema
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cardbox.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return db
}

// NewLibrary returns a library over db with the cheapest bcrypt cost
func NewLibrary(t *testing.T, db *gorm.DB) *library.Library {
	t.Helper()
	return library.New(db, library.Options{BcryptCost: bcrypt.MinCost})
}

func NewSessions(t *testing.T) *auth.Sessions {
	t.Helper()

	sessions, err := auth.NewSessions(auth.Options{
		Secret:   TestSecret,
		Issuer:   TestIssuer,
		Audience: TestAudience,
		TTL:      time.Hour,
	})
	if err != nil {
		t.Fatalf("Failed to create sessions: %v", err)
	}
	return sessions
}

// CreateTestUser registers a box and returns its identity
func CreateTestUser(t *testing.T, lib *library.Library, username string) models.Identity {
	t.Helper()

	user, err := lib.Register(context.Background(), library.RegisterInput{
		Username: username,
		Password: TestPassword,
		Icon:     1,
	})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return models.Identity{UserID: user.PublicID, Username: user.Username}
}

// CreateTestCard creates a draft card owned by ident
func CreateTestCard(t *testing.T, lib *library.Library, ident models.Identity, word string) models.Card {
	t.Helper()

	card, err := lib.CreateCard(context.Background(), ident, library.CardInput{
		Word:       word,
		Definition: "definition of " + word,
	})
	if err != nil {
		t.Fatalf("Failed to create test card: %v", err)
	}
	return card
}

// CreatePublishedCard creates a card owned by ident and publishes it
func CreatePublishedCard(t *testing.T, lib *library.Library, ident models.Identity, word string) models.Card {
	t.Helper()

	card := CreateTestCard(t, lib, ident, word)
	card, err := lib.UpdateCard(context.Background(), ident, card.PublicID, library.CardUpdate{Publish: true})
	if err != nil {
		t.Fatalf("Failed to publish test card: %v", err)
	}
	return card
}

// CreateTestSet creates a draft set owned by ident holding cardIDs
func CreateTestSet(t *testing.T, lib *library.Library, ident models.Identity, name string, cardIDs ...string) models.Set {
	t.Helper()

	set, err := lib.CreateSet(context.Background(), ident, name)
	if err != nil {
		t.Fatalf("Failed to create test set: %v", err)
	}
	if len(cardIDs) > 0 {
		set, err = lib.ReplaceSetCards(context.Background(), ident, set.PublicID, cardIDs)
		if err != nil {
			t.Fatalf("Failed to fill test set: %v", err)
		}
	}
	return set
}

// SessionCookie returns the cookie a signed-in ident would send
func SessionCookie(t *testing.T, sessions *auth.Sessions, ident models.Identity) *http.Cookie {
	t.Helper()

	token, err := sessions.CreateToken(ident)
	if err != nil {
		t.Fatalf("Failed to create token: %v", err)
	}
	return &http.Cookie{Name: sessions.CookieName(), Value: token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, cookie *http.Cookie) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
