package application

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/atvirokodosprendimai/pressroom/internal/adapters/db/sqlite"
	"github.com/atvirokodosprendimai/pressroom/internal/domain"
	"github.com/rs/zerolog"
)

func newTestServices(t *testing.T) (*WriteService, *ReadService, *Hooks) {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "pressroom_test.db")

	db, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := sqlite.RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	repo := sqlite.NewPublishingRepository(db)
	hooks := NewHooks(zerolog.Nop())
	writes := NewWriteService(repo, hooks, zerolog.Nop())
	reads := NewReadService(repo)
	return writes, reads, hooks
}

func TestCreateAccountValidatesAndRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	writes, reads, _ := newTestServices(t)

	_, err := writes.CreateAccount(ctx, CreateAccountInput{LastName: "Petrova", Email: "ada@example.com"})
	var v *domain.ValidationError
	if !errors.As(err, &v) || v.Field != "first_name" {
		t.Fatalf("expected first_name validation error, got %v", err)
	}

	_, err = writes.CreateAccount(ctx, CreateAccountInput{FirstName: "Ada", LastName: "Petrova", Email: "not-an-email"})
	if !errors.As(err, &v) || v.Field != "email" {
		t.Fatalf("expected malformed email to fail, got %v", err)
	}

	if _, err := writes.CreateAccount(ctx, CreateAccountInput{FirstName: "Ada", LastName: "Petrova", Email: "ada@example.com"}); err != nil {
		t.Fatalf("create account: %v", err)
	}

	_, err = writes.CreateAccount(ctx, CreateAccountInput{FirstName: "Other", LastName: "Person", Email: "ada@example.com"})
	if !errors.As(err, &v) {
		t.Fatalf("expected validation error for duplicate email, got %v", err)
	}
	if v.Field != "email" || v.Reason != "already in use" {
		t.Fatalf("unexpected duplicate email error: %+v", v)
	}

	accounts, err := reads.ListAccounts(ctx, "", 10)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("rejected duplicate still inserted a row: %+v", accounts)
	}
}

func TestCreateContentWithTagsGuardsInput(t *testing.T) {
	ctx := context.Background()
	writes, reads, _ := newTestServices(t)

	_, err := writes.CreateContentWithTags(ctx, CreateContentInput{AccountID: 42, Title: "Orphan", Body: "body"})
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.Kind != domain.KindAccount {
		t.Fatalf("expected account not found, got %v", err)
	}

	account, err := writes.CreateAccount(ctx, CreateAccountInput{FirstName: "Ada", LastName: "Petrova", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	_, err = writes.CreateContentWithTags(ctx, CreateContentInput{AccountID: account.ID, Title: "Bad status", Body: "body", Status: "published"})
	var v *domain.ValidationError
	if !errors.As(err, &v) || v.Field != "status" {
		t.Fatalf("expected status validation error, got %v", err)
	}

	_, err = writes.CreateContentWithTags(ctx, CreateContentInput{AccountID: account.ID, Body: "body"})
	if !errors.As(err, &v) || v.Field != "title" {
		t.Fatalf("expected title validation error, got %v", err)
	}

	content, err := writes.CreateContentWithTags(ctx, CreateContentInput{AccountID: account.ID, Title: "Defaults to draft", Body: "body", TagNames: []string{"go", "sqlite"}})
	if err != nil {
		t.Fatalf("create content: %v", err)
	}
	if content.Status != domain.StatusDraft {
		t.Fatalf("expected draft default, got %s", content.Status)
	}

	loaded, err := reads.GetContentByID(ctx, content.ID)
	if err != nil {
		t.Fatalf("get content: %v", err)
	}
	if len(loaded.Tags) != 2 {
		t.Fatalf("expected 2 tags linked, got %+v", loaded.Tags)
	}
	seen := map[string]bool{}
	for _, tag := range loaded.Tags {
		seen[tag.Name] = true
	}
	if !seen["go"] || !seen["sqlite"] {
		t.Fatalf("expected exactly tags go and sqlite, got %+v", loaded.Tags)
	}
	if loaded.Account == nil || loaded.Account.ID != account.ID {
		t.Fatalf("expected owning account loaded, got %+v", loaded.Account)
	}
}

func TestCreateProfileOncePerAccount(t *testing.T) {
	ctx := context.Background()
	writes, _, _ := newTestServices(t)

	_, err := writes.CreateProfile(ctx, CreateProfileInput{AccountID: 42, Description: "ghost"})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected account not found, got %v", err)
	}

	account, err := writes.CreateAccount(ctx, CreateAccountInput{FirstName: "Ada", LastName: "Petrova", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := writes.CreateProfile(ctx, CreateProfileInput{AccountID: account.ID, Description: "writes things"}); err != nil {
		t.Fatalf("create profile: %v", err)
	}

	_, err = writes.CreateProfile(ctx, CreateProfileInput{AccountID: account.ID, Description: "second"})
	var v *domain.ValidationError
	if !errors.As(err, &v) || v.Field != "account_id" {
		t.Fatalf("expected one-profile rule to reject, got %v", err)
	}
}

func TestTagPairingReportsCombinedNotFound(t *testing.T) {
	ctx := context.Background()
	writes, reads, _ := newTestServices(t)

	account, err := writes.CreateAccount(ctx, CreateAccountInput{FirstName: "Ada", LastName: "Petrova", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	content, err := writes.CreateContentWithTags(ctx, CreateContentInput{AccountID: account.ID, Title: "Untagged", Body: "body"})
	if err != nil {
		t.Fatalf("create content: %v", err)
	}
	tag, err := writes.CreateTag(ctx, CreateTagInput{Name: "howto"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}

	var nf *domain.NotFoundError
	if err := writes.AddTagToContent(ctx, content.ID, 9999); !errors.As(err, &nf) || nf.Kind != domain.KindContentOrTag {
		t.Fatalf("expected combined not found for missing tag, got %v", err)
	}
	if err := writes.AddTagToContent(ctx, 9999, tag.ID); !errors.As(err, &nf) || nf.Kind != domain.KindContentOrTag {
		t.Fatalf("expected combined not found for missing content, got %v", err)
	}
	if err := writes.RemoveTagFromContent(ctx, 9999, tag.ID); !errors.As(err, &nf) || nf.Kind != domain.KindContentOrTag {
		t.Fatalf("expected combined not found on remove, got %v", err)
	}

	if err := writes.AddTagToContent(ctx, content.ID, tag.ID); err != nil {
		t.Fatalf("add tag: %v", err)
	}
	if err := writes.AddTagToContent(ctx, content.ID, tag.ID); err != nil {
		t.Fatalf("re-add should be a no-op: %v", err)
	}
	loaded, err := reads.GetContentByID(ctx, content.ID)
	if err != nil {
		t.Fatalf("get content: %v", err)
	}
	if len(loaded.Tags) != 1 {
		t.Fatalf("re-adding doubled the pairing: %+v", loaded.Tags)
	}

	other, err := writes.CreateTag(ctx, CreateTagInput{Name: "never-linked"})
	if err != nil {
		t.Fatalf("create other tag: %v", err)
	}
	if err := writes.RemoveTagFromContent(ctx, content.ID, other.ID); err != nil {
		t.Fatalf("removing a pairing that never existed should be silent: %v", err)
	}
}

func TestUpdateContentValidatesTitleLength(t *testing.T) {
	ctx := context.Background()
	writes, reads, _ := newTestServices(t)

	account, err := writes.CreateAccount(ctx, CreateAccountInput{FirstName: "Ada", LastName: "Petrova", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	content, err := writes.CreateContentWithTags(ctx, CreateContentInput{AccountID: account.ID, Title: "Original title", Body: "body"})
	if err != nil {
		t.Fatalf("create content: %v", err)
	}

	short := "abcd"
	_, err = writes.UpdateContent(ctx, content.ID, UpdateContentInput{Title: &short})
	var v *domain.ValidationError
	if !errors.As(err, &v) || v.Field != "title" {
		t.Fatalf("expected title length rule to reject, got %v", err)
	}

	unchanged, err := reads.GetContentByID(ctx, content.ID)
	if err != nil {
		t.Fatalf("get content: %v", err)
	}
	if unchanged.Title != "Original title" {
		t.Fatalf("rejected update still wrote: %q", unchanged.Title)
	}

	same, err := writes.UpdateContent(ctx, content.ID, UpdateContentInput{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if same.Title != "Original title" {
		t.Fatalf("empty update should return the row as is, got %q", same.Title)
	}

	archived := "archived"
	updated, err := writes.UpdateContent(ctx, content.ID, UpdateContentInput{Status: &archived})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != domain.StatusArchived {
		t.Fatalf("expected archived, got %s", updated.Status)
	}

	bogus := "published"
	if _, err := writes.UpdateContent(ctx, content.ID, UpdateContentInput{Status: &bogus}); !domain.IsValidation(err) {
		t.Fatalf("expected unknown status to fail, got %v", err)
	}
}

func TestUpdateAccountKeepsEmailUnique(t *testing.T) {
	ctx := context.Background()
	writes, _, _ := newTestServices(t)

	ada, err := writes.CreateAccount(ctx, CreateAccountInput{FirstName: "Ada", LastName: "Petrova", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create ada: %v", err)
	}
	jonas, err := writes.CreateAccount(ctx, CreateAccountInput{FirstName: "Jonas", LastName: "Kairys", Email: "jonas@example.com"})
	if err != nil {
		t.Fatalf("create jonas: %v", err)
	}

	taken := "ada@example.com"
	_, err = writes.UpdateAccount(ctx, jonas.ID, UpdateAccountInput{Email: &taken})
	var v *domain.ValidationError
	if !errors.As(err, &v) || v.Field != "email" {
		t.Fatalf("expected taken email to reject, got %v", err)
	}

	own := "ada@example.com"
	if _, err := writes.UpdateAccount(ctx, ada.ID, UpdateAccountInput{Email: &own}); err != nil {
		t.Fatalf("re-setting own email should pass: %v", err)
	}

	name := "Jonas K"
	updated, err := writes.UpdateAccount(ctx, jonas.ID, UpdateAccountInput{FirstName: &name})
	if err != nil {
		t.Fatalf("update first name: %v", err)
	}
	if updated.FirstName != "Jonas K" || updated.Email != "jonas@example.com" {
		t.Fatalf("partial update went wrong: %+v", updated)
	}
}
