package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{Invalid("email", "is required"), "email: is required"},
		{NotFound(KindAccount), "account not found"},
		{NotFound(KindContentOrTag), "content or tag not found"},
		{&InvalidScopeError{Scope: "bogus"}, `unknown scope "bogus"`},
		{&TransactionError{Op: "create content with tags", Err: errors.New("disk full")}, "create content with tags: transaction rolled back: disk full"},
		{&HookError{Kind: KindContent, ID: 7, Err: errors.New("boom")}, "afterCreate content 7: boom"},
	}
	for _, c := range cases {
		if got := c.err.Error(); got != c.want {
			t.Fatalf("got %q want %q", got, c.want)
		}
	}
}

func TestErrorMatchingSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("while saving: %w", NotFound(KindTag))
	if !IsNotFound(wrapped) {
		t.Fatalf("expected wrapped not found to match")
	}
	var nf *NotFoundError
	if !errors.As(wrapped, &nf) || nf.Kind != KindTag {
		t.Fatalf("expected tag kind through the wrap, got %+v", nf)
	}

	if IsValidation(wrapped) {
		t.Fatalf("not found must not match validation")
	}
	if !IsValidation(fmt.Errorf("outer: %w", Invalid("title", "is required"))) {
		t.Fatalf("expected wrapped validation to match")
	}

	cause := errors.New("locked")
	tx := &TransactionError{Op: "link tags", Err: cause}
	if !errors.Is(tx, cause) {
		t.Fatalf("transaction error should unwrap to its cause")
	}

	hookCause := NotFound(KindAccount)
	hook := &HookError{Kind: KindContent, ID: 3, Err: hookCause}
	if !IsNotFound(hook) {
		t.Fatalf("hook error should unwrap to its cause")
	}
}
