package logging

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestWithOperation(t *testing.T) {
	logger := slog.Default()
	result := WithOperation(logger, "people.search")
	if result == nil {
		t.Error("WithOperation returned nil")
	}
}

func TestWithTool(t *testing.T) {
	logger := slog.Default()
	result := WithTool(logger, "create_contact")
	if result == nil {
		t.Error("WithTool returned nil")
	}
}

func TestOperationAttr(t *testing.T) {
	attr := Operation("people.get")
	if attr.Key != KeyOperation {
		t.Errorf("Operation key = %q, want %q", attr.Key, KeyOperation)
	}
	if attr.Value.String() != "people.get" {
		t.Errorf("Operation value = %q, want %q", attr.Value.String(), "people.get")
	}
}

func TestResourceAttr(t *testing.T) {
	attr := Resource("people/c123")
	if attr.Key != KeyResource {
		t.Errorf("Resource key = %q, want %q", attr.Key, KeyResource)
	}
	if attr.Value.String() != "people/c123" {
		t.Errorf("Resource value = %q, want %q", attr.Value.String(), "people/c123")
	}
}

func TestErrAttr(t *testing.T) {
	attr := Err(errors.New("boom"))
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "boom" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "boom")
	}

	// Nil error produces an empty group that slog omits.
	nilAttr := Err(nil)
	if nilAttr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty", nilAttr.Key)
	}
}

func TestAnonymizeUser(t *testing.T) {
	if got := AnonymizeUser(""); got != "" {
		t.Errorf("AnonymizeUser(\"\") = %q, want empty", got)
	}

	hashed := AnonymizeUser("user-123")
	if !strings.HasPrefix(hashed, "user:") {
		t.Errorf("expected 'user:' prefix, got %q", hashed)
	}
	if strings.Contains(hashed, "user-123") {
		t.Error("anonymized value must not contain the raw identifier")
	}
	if hashed != AnonymizeUser("user-123") {
		t.Error("anonymization must be stable for correlation")
	}
	if hashed == AnonymizeUser("user-456") {
		t.Error("different identifiers must hash differently")
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken(""); got != "<empty>" {
		t.Errorf("SanitizeToken(\"\") = %q, want <empty>", got)
	}

	token := "ya29.super-secret-token"
	got := SanitizeToken(token)
	if strings.Contains(got, "secret") || strings.Contains(got, "ya29") {
		t.Errorf("sanitized token leaks content: %q", got)
	}
	if got != "[token:23 chars]" {
		t.Errorf("SanitizeToken = %q, want length indicator", got)
	}
}
