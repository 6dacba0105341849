package library

import (
	"context"
	"errors"
	"maps"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andrewpaige1/cardbox-api/apperr"
	"github.com/andrewpaige1/cardbox-api/config"
	"github.com/andrewpaige1/cardbox-api/models"
)

func TestCountOf(t *testing.T) {
	got := CountOf([]string{"a", "b", "a", "c", "a"})
	want := Multiplicity[string]{"a": 3, "b": 1, "c": 1}
	if !maps.Equal(got, want) {
		t.Errorf("CountOf = %v, want %v", got, want)
	}

	if n := len(CountOf[string](nil)); n != 0 {
		t.Errorf("CountOf(nil) has %d entries, want 0", n)
	}
}

func TestReferenceDeltas(t *testing.T) {
	tests := []struct {
		name string
		prev []uint
		next []uint
		want map[uint]int
	}{
		{
			name: "empty to duplicates",
			prev: nil,
			next: []uint{1, 1},
			want: map[uint]int{1: 2},
		},
		{
			name: "swap one card",
			prev: []uint{1, 2},
			next: []uint{2, 3},
			want: map[uint]int{1: -1, 3: 1},
		},
		{
			name: "reorder is a no-op",
			prev: []uint{1, 2, 3},
			next: []uint{3, 1, 2},
			want: map[uint]int{},
		},
		{
			name: "delete releases every slot",
			prev: []uint{4, 4, 5},
			next: nil,
			want: map[uint]int{4: -2, 5: -1},
		},
		{
			name: "multiplicity changes",
			prev: []uint{7, 7, 7},
			next: []uint{7},
			want: map[uint]int{7: -2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReferenceDeltas(tt.prev, tt.next)
			if !maps.Equal(got, tt.want) {
				t.Errorf("ReferenceDeltas(%v, %v) = %v, want %v", tt.prev, tt.next, got, tt.want)
			}
		})
	}
}

func TestReferenceDeltasSumMatchesLengths(t *testing.T) {
	prev := []uint{1, 2, 2, 3, 9}
	next := []uint{2, 3, 3, 3, 4, 4}

	sum := 0
	for _, d := range ReferenceDeltas(prev, next) {
		sum += d
	}
	if want := len(next) - len(prev); sum != want {
		t.Errorf("sum of deltas = %d, want %d", sum, want)
	}
}

func TestTransactRetriesStaleVersion(t *testing.T) {
	lib := &Library{maxAttempts: 3}

	attempts := 0
	err := lib.retry(context.Background(), func() error {
		attempts++
		return errStaleVersion
	})
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
	if apperr.KindOf(err) != apperr.Conflict {
		t.Errorf("Expected conflict after exhausting attempts, got %v", err)
	}
	if !errors.Is(err, errStaleVersion) {
		t.Errorf("Expected error to wrap errStaleVersion, got %v", err)
	}
}

func TestTransactStopsOnOtherErrors(t *testing.T) {
	lib := &Library{maxAttempts: 3}

	attempts := 0
	err := lib.retry(context.Background(), func() error {
		attempts++
		return apperr.Denied("nope")
	})
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
	if apperr.KindOf(err) != apperr.Forbidden {
		t.Errorf("Expected forbidden, got %v", err)
	}
}

func TestTransactSucceedsAfterRetry(t *testing.T) {
	lib := &Library{maxAttempts: 3}

	attempts := 0
	err := lib.retry(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return errStaleVersion
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "library.db")), &gorm.Config{
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

func loadVersion(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var set models.Set
	if err := db.First(&set, id).Error; err != nil {
		t.Fatalf("Failed to load set: %v", err)
	}
	return set.Version
}

func TestClaimVersionRetriesStaleRead(t *testing.T) {
	db := openTestDB(t)
	lib := New(db, Options{})
	ctx := context.Background()

	set := models.Set{PublicID: "set-1", AuthorID: 1, Author: "alice", Name: "busy", Version: 1}
	if err := db.Create(&set).Error; err != nil {
		t.Fatalf("Failed to create set: %v", err)
	}

	attempts := 0
	err := lib.transact(ctx, func(tx *gorm.DB) error {
		attempts++
		var read models.Set
		if err := tx.First(&read, set.ID).Error; err != nil {
			return err
		}
		if attempts == 1 {
			// another writer bumps the version between our read and our claim
			err := tx.Model(&models.Set{}).Where("id = ?", set.ID).
				UpdateColumn("version", gorm.Expr("version + 1")).Error
			if err != nil {
				return err
			}
		}
		return claimVersion(tx, &models.Set{}, read.ID, read.Version)
	})
	if err != nil {
		t.Fatalf("Expected the retry to succeed, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
	// the first attempt rolled back, so only the winning claim is visible
	if got := loadVersion(t, db, set.ID); got != 2 {
		t.Errorf("Expected version 2, got %d", got)
	}
}

func TestClaimVersionLosesToCommittedWriter(t *testing.T) {
	db := openTestDB(t)
	lib := New(db, Options{})
	ctx := context.Background()

	set := models.Set{PublicID: "set-1", AuthorID: 1, Author: "alice", Name: "busy", Version: 1}
	if err := db.Create(&set).Error; err != nil {
		t.Fatalf("Failed to create set: %v", err)
	}

	// the writer that read version 1 first commits its claim
	if err := db.Transaction(func(tx *gorm.DB) error {
		return claimVersion(tx, &models.Set{}, set.ID, 1)
	}); err != nil {
		t.Fatalf("First claim failed: %v", err)
	}

	attempts := 0
	err := lib.transact(ctx, func(tx *gorm.DB) error {
		attempts++
		return claimVersion(tx, &models.Set{}, set.ID, 1)
	})
	if apperr.KindOf(err) != apperr.Conflict || !errors.Is(err, errStaleVersion) {
		t.Fatalf("Expected a conflict wrapping errStaleVersion, got %v", err)
	}
	if attempts != defaultMaxAttempts {
		t.Errorf("Expected %d attempts, got %d", defaultMaxAttempts, attempts)
	}
	if got := loadVersion(t, db, set.ID); got != 2 {
		t.Errorf("Expected version 2, got %d", got)
	}
}
