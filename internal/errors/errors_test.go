package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapKeepsCodeAndInternal(t *testing.T) {
	internal := fmt.Errorf("connection reset")
	err := Wrap(ErrTransport, internal)

	if err.Code != ErrTransport.Code {
		t.Errorf("expected code %q, got %q", ErrTransport.Code, err.Code)
	}
	if !errors.Is(err, internal) {
		t.Error("expected wrapped internal error to be reachable via errors.Is")
	}
}

func TestSentinelMatchingSurvivesRewrapping(t *testing.T) {
	err := WithMessage(ErrNotFound, "not found: /some/url")

	if !errors.Is(err, ErrNotFound) {
		t.Error("expected re-messaged error to match its sentinel")
	}
	if errors.Is(err, ErrForbidden) {
		t.Error("expected no match against a different sentinel")
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("expected errors.As to recover *AppError")
	}
	if appErr.Message != "not found: /some/url" {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}
