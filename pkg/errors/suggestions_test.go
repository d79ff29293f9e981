package errors

import (
	"reflect"
	"testing"
)

func TestRegistry_PriorityAndConditions(t *testing.T) {
	r := NewRegistry().
		Register("X", "plain").
		RegisterWithPriority("X", "urgent", 5).
		RegisterWithCondition("X", "only anon", map[string]string{ContextCommandContext: "user-anon"})

	got := r.Get("X", map[string]string{ContextCommandContext: "user-user"})
	if want := []string{"urgent", "plain"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Get() = %v, want %v", got, want)
	}

	got = r.Get("X", map[string]string{ContextCommandContext: "user-anon"})
	if want := []string{"urgent", "plain", "only anon"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Get() = %v, want %v", got, want)
	}

	if r.HasSuggestions("Y") {
		t.Error("unexpected suggestions for unknown code")
	}
	if !reflect.DeepEqual(r.Codes(), []string{"X"}) {
		t.Errorf("Codes() = %v", r.Codes())
	}
}

func TestAttachSuggestions(t *testing.T) {
	t.Run("conditional on context", func(t *testing.T) {
		err := AttachSuggestions(Remote(401, "Unauthorized").WithContext(ContextCommandContext, "user-anon"))
		if len(err.Suggestions) == 0 {
			t.Fatal("expected login suggestion for anonymous context")
		}
	})

	t.Run("condition not met", func(t *testing.T) {
		err := AttachSuggestions(Remote(401, "Unauthorized").WithContext(ContextCommandContext, "user-user"))
		if len(err.Suggestions) != 0 {
			t.Errorf("expected no suggestions, got %v", err.Suggestions)
		}
	})

	t.Run("existing suggestions kept", func(t *testing.T) {
		err := AttachSuggestions(Remote(403, "Forbidden").WithSuggestion("mine"))
		if !reflect.DeepEqual(err.Suggestions, []string{"mine"}) {
			t.Errorf("Suggestions = %v", err.Suggestions)
		}
	})

	t.Run("nil", func(t *testing.T) {
		if AttachSuggestions(nil) != nil {
			t.Error("expected nil")
		}
	})
}
