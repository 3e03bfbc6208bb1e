package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "document not open")
		if err.Error() != "[NOT_FOUND] document not open" {
			t.Errorf("expected [NOT_FOUND] document not open, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "grammar load failed")
		expected := "[INTERNAL_ERROR] grammar load failed: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
		if !errors.Is(err, original) {
			t.Error("expected wrapped error to unwrap to original")
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid grammar")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsCodeThroughFmtWrap", func(t *testing.T) {
		err := fmt.Errorf("load facts: %w", New(CodeNotSupported, "unknown extension"))
		if !IsCode(err, CodeNotSupported) {
			t.Error("expected IsCode to see through fmt wrapping")
		}
		if CodeOf(err) != CodeNotSupported {
			t.Errorf("expected CodeOf to be NOT_SUPPORTED, got %s", CodeOf(err))
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := AddContext(New(CodeNotFound, "missing"), CtxURI, "file:///a.c")
		var de *DomainError
		if !errors.As(err, &de) {
			t.Fatal("expected DomainError")
		}
		if de.Context[CtxURI] != "file:///a.c" {
			t.Errorf("expected uri context, got %v", de.Context)
		}

		plain := AddContext(errors.New("boom"), CtxPath, "x.toml")
		if CodeOf(plain) != CodeInternal {
			t.Errorf("expected plain errors to become internal, got %s", CodeOf(plain))
		}
	})
}
