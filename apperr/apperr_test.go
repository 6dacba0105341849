package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{InvalidInput, http.StatusBadRequest},
		{Unauthorized, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{Conflict, http.StatusConflict},
		{CapacityExceeded, http.StatusConflict},
		{Internal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.Status(); got != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, got)
			}
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("loading card: %w", Missing("Card does not exist"))

	if KindOf(err) != NotFound {
		t.Errorf("Expected NotFound, got %s", KindOf(err))
	}
	if !errors.Is(err, &Error{Kind: NotFound}) {
		t.Error("Expected errors.Is to match on kind")
	}
	if errors.Is(err, &Error{Kind: Forbidden}) {
		t.Error("Expected errors.Is not to match a different kind")
	}
	if KindOf(errors.New("plain")) != Internal {
		t.Error("Expected plain errors to be internal")
	}
}

func TestMessageHidesInternalDetails(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:5432: connection refused")
	err := Wrap(Internal, "database error", cause)

	if got := Message(err); got != "internal server error" {
		t.Errorf("Expected generic message, got %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected wrapped cause to be reachable")
	}
	if got := Message(Denied("Access forbidden")); got != "Access forbidden" {
		t.Errorf("Expected client message, got %q", got)
	}
}

func TestFromDB(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"record not found", gorm.ErrRecordNotFound, NotFound},
		{"wrapped not found", fmt.Errorf("query: %w", gorm.ErrRecordNotFound), NotFound},
		{"gorm duplicate", gorm.ErrDuplicatedKey, Conflict},
		{"postgres unique violation", &pgconn.PgError{Code: "23505"}, Conflict},
		{"postgres other", &pgconn.PgError{Code: "40001"}, Internal},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, Conflict},
		{"domain error passes through", Denied("nope"), Forbidden},
		{"unknown", errors.New("boom"), Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromDB(tt.err, "Thing does not exist")
			if KindOf(got) != tt.want {
				t.Errorf("Expected %s, got %s (%v)", tt.want, KindOf(got), got)
			}
		})
	}

	if FromDB(nil, "x") != nil {
		t.Error("Expected nil for nil error")
	}
	if got := Message(FromDB(gorm.ErrRecordNotFound, "Card does not exist")); got != "Card does not exist" {
		t.Errorf("Expected not-found message, got %q", got)
	}
}
