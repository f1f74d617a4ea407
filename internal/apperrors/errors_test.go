package apperrors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPublicMessage_UsesSafeMessage(t *testing.T) {
	sentinel := errors.New("open C:\\Users\\me\\config.json: access denied")
	err := IO("Failed to read configuration file", sentinel)
	if got := PublicMessage(err); got != "Failed to read configuration file" {
		t.Fatalf("PublicMessage() = %q, want %q", got, "Failed to read configuration file")
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped cause to be retained for internal matching")
	}
	if !strings.Contains(err.Error(), "access denied") {
		t.Fatalf("Error() = %q, want cause included", err.Error())
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("reload: %w", Parse("", errors.New("unexpected EOF")))
	kind, ok := KindOf(err)
	if !ok || kind != KindParse {
		t.Fatalf("KindOf() = (%q, %v), want (%q, true)", kind, ok, KindParse)
	}
	if !IsParse(err) || IsIO(err) {
		t.Fatalf("IsParse/IsIO mismatch for %v", err)
	}
}

func TestDefaultSafeMessage(t *testing.T) {
	err := New(KindManifestInvalid, "  ", nil)
	if got := PublicMessage(err); got != "Widget manifest is invalid." {
		t.Fatalf("PublicMessage() = %q", got)
	}
}

func TestInvalidArgument(t *testing.T) {
	err := InvalidArgument("widget id is empty")
	if !IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument kind, got %v", err)
	}
	if err.Error() != "widget id is empty" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestPublicMessage_NonAppError(t *testing.T) {
	err := errors.New("plain")
	if got := PublicMessage(err); got != "plain" {
		t.Fatalf("PublicMessage() = %q, want %q", got, "plain")
	}
}
