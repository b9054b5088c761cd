package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		msg  string
	}{
		{"validation", Validation("shares must sum to total"), ErrValidation, "shares must sum to total"},
		{"unauthorized", Unauthorized("not authorized"), ErrUnauthorized, "not authorized"},
		{"not found", NotFoundf("expense %d not found", 7), ErrNotFound, "expense 7 not found"},
		{"storage", Storage("insert expense", sql.ErrConnDone), ErrStorage, "server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.kind)
			}
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !errors.Is(wrapped, tt.kind) {
				t.Errorf("kind lost through wrapping: %v", wrapped)
			}
			if got := Message(wrapped); got != tt.msg {
				t.Errorf("Message() = %q, want %q", got, tt.msg)
			}
		})
	}
}

func TestStorage_KeepsClassification(t *testing.T) {
	err := Storage("get expense", NotFound("expense not found"))
	if !IsNotFound(err) {
		t.Errorf("expected NotFound to survive Storage wrapping, got %v", err)
	}
	if errors.Is(err, ErrStorage) {
		t.Error("classified error should not be reclassified as storage")
	}
}

func TestStorage_Unwrap(t *testing.T) {
	err := Storage("commit", sql.ErrTxDone)
	if !errors.Is(err, sql.ErrTxDone) {
		t.Error("expected underlying driver error to be reachable")
	}
	if Storage("noop", nil) != nil {
		t.Error("Storage(nil) should be nil")
	}
}
