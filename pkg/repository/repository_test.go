package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/image-intake/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func TestMapError_Nil(t *testing.T) {
	if result := repository.MapError(nil, errNotFound, errDuplicate); result != nil {
		t.Errorf("MapError(nil) = %v, want nil", result)
	}
}

func TestMapError_NoRows(t *testing.T) {
	result := repository.MapError(sql.ErrNoRows, errNotFound, errDuplicate)
	if !errors.Is(result, errNotFound) {
		t.Errorf("MapError(sql.ErrNoRows) = %v, want %v", result, errNotFound)
	}
}

func TestMapError_WrappedNoRows(t *testing.T) {
	wrapped := fmt.Errorf("query submission: %w", sql.ErrNoRows)
	result := repository.MapError(wrapped, errNotFound, errDuplicate)
	if !errors.Is(result, errNotFound) {
		t.Errorf("MapError(wrapped no rows) = %v, want %v", result, errNotFound)
	}
}

func TestMapError_PgDuplicate(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505"}
	result := repository.MapError(pgErr, errNotFound, errDuplicate)
	if !errors.Is(result, errDuplicate) {
		t.Errorf("MapError(pgErr 23505) = %v, want %v", result, errDuplicate)
	}
}

func TestMapError_OtherPgError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503"}
	result := repository.MapError(pgErr, errNotFound, errDuplicate)
	if result != pgErr {
		t.Errorf("MapError(pgErr other) = %v, want original error", result)
	}
}

func TestMapError_OtherError(t *testing.T) {
	otherErr := errors.New("connection reset")
	result := repository.MapError(otherErr, errNotFound, errDuplicate)
	if result != otherErr {
		t.Errorf("MapError(otherErr) = %v, want original error", result)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"pg unique", &pgconn.PgError{Code: "23505"}, true},
		{"pg wrapped unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"pg not null", &pgconn.PgError{Code: "23502"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repository.IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}
