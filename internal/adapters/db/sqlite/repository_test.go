package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/atvirokodosprendimai/pressroom/internal/domain"
)

func newTestRepo(t *testing.T) *PublishingRepository {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "pressroom_test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return NewPublishingRepository(db)
}

func TestCreateContentWithTagsRollsBackOnBadTagName(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	account, err := repo.CreateAccount(ctx, domain.Account{FirstName: "Ada", LastName: "Petrova", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	alpha, err := repo.CreateTag(ctx, domain.Tag{Name: "alpha"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}

	_, err = repo.CreateContentWithTags(ctx, domain.Content{
		Title:     "Release notes",
		Body:      "Everything shipped.",
		AccountID: account.ID,
		Status:    domain.StatusActive,
	}, []string{"alpha", "beta", " "})
	if err == nil {
		t.Fatalf("expected blank tag name to fail the write")
	}
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	items, total, err := repo.ListContentPage(ctx, nil, 1, 10)
	if err != nil {
		t.Fatalf("list content: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("content row survived a rolled back write: total=%d items=%d", total, len(items))
	}

	tags, err := repo.ListTags(ctx, "", 50)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 1 || tags[0].ID != alpha.ID {
		t.Fatalf("tag table changed by a rolled back write: %+v", tags)
	}
}

func TestCreateContentWithTagsReusesExistingTags(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	account, err := repo.CreateAccount(ctx, domain.Account{FirstName: "Jonas", LastName: "Kairys", Email: "jonas@example.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	first, err := repo.CreateContentWithTags(ctx, domain.Content{
		Title:     "SQLite in production",
		Body:      "Notes from the field.",
		AccountID: account.ID,
		Status:    domain.StatusActive,
	}, []string{"go", "sqlite"})
	if err != nil {
		t.Fatalf("create first content: %v", err)
	}
	second, err := repo.CreateContentWithTags(ctx, domain.Content{
		Title:     "More SQLite notes",
		Body:      "Follow-up.",
		AccountID: account.ID,
		Status:    domain.StatusDraft,
	}, []string{"go"})
	if err != nil {
		t.Fatalf("create second content: %v", err)
	}

	firstTags, err := repo.TagsForContent(ctx, first.ID)
	if err != nil {
		t.Fatalf("tags for first: %v", err)
	}
	if len(firstTags) != 2 {
		t.Fatalf("expected 2 tags on first content, got %d", len(firstTags))
	}

	secondTags, err := repo.TagsForContent(ctx, second.ID)
	if err != nil {
		t.Fatalf("tags for second: %v", err)
	}
	if len(secondTags) != 1 || secondTags[0].Name != "go" {
		t.Fatalf("expected reused go tag on second content, got %+v", secondTags)
	}

	var goTagID uint
	for _, tag := range firstTags {
		if tag.Name == "go" {
			goTagID = tag.ID
		}
	}
	if secondTags[0].ID != goTagID {
		t.Fatalf("second content created a duplicate go tag: %d vs %d", secondTags[0].ID, goTagID)
	}

	all, err := repo.ListTags(ctx, "", 50)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 tag rows total, got %d", len(all))
	}
}

func TestListContentPageFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	account, err := repo.CreateAccount(ctx, domain.Account{FirstName: "Ruta", LastName: "Adomaitis", Email: "ruta@example.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	titles := []string{"active one", "active two", "active three", "active four", "active five"}
	for _, title := range titles {
		if _, err := repo.CreateContentWithTags(ctx, domain.Content{
			Title:     title,
			Body:      "body",
			AccountID: account.ID,
			Status:    domain.StatusActive,
		}, []string{"news"}); err != nil {
			t.Fatalf("create %q: %v", title, err)
		}
	}
	_, _ = repo.CreateContentWithTags(ctx, domain.Content{Title: "draft one", Body: "body", AccountID: account.ID, Status: domain.StatusDraft}, nil)
	_, _ = repo.CreateContentWithTags(ctx, domain.Content{Title: "draft two", Body: "body", AccountID: account.ID, Status: domain.StatusDraft}, nil)

	active := domain.StatusActive
	items, total, err := repo.ListContentPage(ctx, &active, 2, 2)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected 5 active rows, got %d", total)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items on page 2, got %d", len(items))
	}
	if items[0].Title != "active three" || items[1].Title != "active two" {
		t.Fatalf("expected newest-first page [active three, active two], got [%s, %s]", items[0].Title, items[1].Title)
	}
	for _, item := range items {
		if item.Status != domain.StatusActive {
			t.Fatalf("draft row leaked into active scope: %+v", item)
		}
		if item.Account == nil || item.Account.Email != "ruta@example.com" {
			t.Fatalf("expected owning account loaded, got %+v", item.Account)
		}
		if len(item.Tags) != 1 || item.Tags[0].Name != "news" {
			t.Fatalf("expected news tag loaded, got %+v", item.Tags)
		}
	}

	items, total, err = repo.ListContentPage(ctx, nil, 1, 10)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if total != 7 || len(items) != 7 {
		t.Fatalf("unscoped list should see every status: total=%d items=%d", total, len(items))
	}

	items, total, err = repo.ListContentPage(ctx, &active, 4, 2)
	if err != nil {
		t.Fatalf("list past end: %v", err)
	}
	if total != 5 || len(items) != 0 {
		t.Fatalf("page past the end should be empty: total=%d items=%d", total, len(items))
	}
}

func TestLinkTagIdempotentAndUnlinkMissingPairIsNoOp(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	account, err := repo.CreateAccount(ctx, domain.Account{FirstName: "Ada", LastName: "Petrova", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	content, err := repo.CreateContentWithTags(ctx, domain.Content{Title: "Untagged", Body: "body", AccountID: account.ID, Status: domain.StatusDraft}, nil)
	if err != nil {
		t.Fatalf("create content: %v", err)
	}
	tag, err := repo.CreateTag(ctx, domain.Tag{Name: "howto"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	other, err := repo.CreateTag(ctx, domain.Tag{Name: "never-linked"})
	if err != nil {
		t.Fatalf("create other tag: %v", err)
	}

	if err := repo.LinkTag(ctx, content.ID, tag.ID); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := repo.LinkTag(ctx, content.ID, tag.ID); err != nil {
		t.Fatalf("relink: %v", err)
	}
	tags, err := repo.TagsForContent(ctx, content.ID)
	if err != nil {
		t.Fatalf("tags for content: %v", err)
	}
	if len(tags) != 1 {
		t.Fatalf("relinking doubled the pairing: %+v", tags)
	}

	if err := repo.UnlinkTag(ctx, content.ID, other.ID); err != nil {
		t.Fatalf("unlink of never-linked pair should be silent: %v", err)
	}
	if err := repo.UnlinkTag(ctx, content.ID, tag.ID); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	if err := repo.UnlinkTag(ctx, content.ID, tag.ID); err != nil {
		t.Fatalf("second unlink should be silent: %v", err)
	}
	tags, err = repo.TagsForContent(ctx, content.ID)
	if err != nil {
		t.Fatalf("tags after unlink: %v", err)
	}
	if len(tags) != 0 {
		t.Fatalf("pairing survived unlink: %+v", tags)
	}
}

func TestGetAccountWithRelationsToleratesMissingPieces(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	account, err := repo.CreateAccount(ctx, domain.Account{FirstName: "Solo", LastName: "Writer", Email: "solo@example.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	got, err := repo.GetAccountWithRelations(ctx, account.ID)
	if err != nil {
		t.Fatalf("get with relations: %v", err)
	}
	if got.Profile != nil {
		t.Fatalf("expected nil profile, got %+v", got.Profile)
	}
	if got.Contents == nil || len(got.Contents) != 0 {
		t.Fatalf("expected empty content slice, got %+v", got.Contents)
	}

	if _, err := repo.GetProfileByAccountID(ctx, account.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected not found profile, got %v", err)
	}

	_, _ = repo.CreateProfile(ctx, domain.Profile{Description: "writes things", AccountID: account.ID})
	_, _ = repo.CreateContentWithTags(ctx, domain.Content{Title: "First post", Body: "body", AccountID: account.ID, Status: domain.StatusDraft}, nil)

	got, err = repo.GetAccountWithRelations(ctx, account.ID)
	if err != nil {
		t.Fatalf("get with relations again: %v", err)
	}
	if got.Profile == nil || got.Profile.Description != "writes things" {
		t.Fatalf("expected profile loaded, got %+v", got.Profile)
	}
	if len(got.Contents) != 1 || got.Contents[0].Title != "First post" {
		t.Fatalf("expected one content loaded, got %+v", got.Contents)
	}
}

func TestDeleteContentClearsPairingsButKeepsTags(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	account, err := repo.CreateAccount(ctx, domain.Account{FirstName: "Ada", LastName: "Petrova", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	content, err := repo.CreateContentWithTags(ctx, domain.Content{Title: "Doomed", Body: "body", AccountID: account.ID, Status: domain.StatusDraft}, []string{"keep"})
	if err != nil {
		t.Fatalf("create content: %v", err)
	}
	tags, err := repo.TagsForContent(ctx, content.ID)
	if err != nil || len(tags) != 1 {
		t.Fatalf("expected one tag before delete: %v %+v", err, tags)
	}

	if err := repo.DeleteContent(ctx, content.ID); err != nil {
		t.Fatalf("delete content: %v", err)
	}
	if _, err := repo.GetContentByID(ctx, content.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected content gone, got %v", err)
	}
	leftover, err := repo.TagsForContent(ctx, content.ID)
	if err != nil {
		t.Fatalf("tags after delete: %v", err)
	}
	if len(leftover) != 0 {
		t.Fatalf("pairings survived the content delete: %+v", leftover)
	}
	if _, err := repo.GetTagByID(ctx, tags[0].ID); err != nil {
		t.Fatalf("tag row should outlive the content: %v", err)
	}

	if err := repo.DeleteContent(ctx, content.ID); !domain.IsNotFound(err) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}

func TestCreateAccountNormalizesAndRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	created, err := repo.CreateAccount(ctx, domain.Account{FirstName: "Ada", LastName: "Petrova", Email: "  Ada@Example.COM "})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if created.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", created.Email)
	}

	if _, err := repo.CreateAccount(ctx, domain.Account{FirstName: "Other", LastName: "Person", Email: "ada@example.com"}); err == nil {
		t.Fatalf("expected unique index to reject duplicate email")
	}

	byEmail, err := repo.GetAccountByEmail(ctx, "ADA@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("lookup should normalize too: got %d want %d", byEmail.ID, created.ID)
	}
}

func TestUpdateAndDeleteReportMissingRows(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.UpdateContent(ctx, 9999, map[string]any{"title": "nobody home"}); !domain.IsNotFound(err) {
		t.Fatalf("expected not found on update, got %v", err)
	}
	if err := repo.DeleteAccount(ctx, 9999); !domain.IsNotFound(err) {
		t.Fatalf("expected not found on delete, got %v", err)
	}
	if err := repo.DeleteTag(ctx, 9999); !domain.IsNotFound(err) {
		t.Fatalf("expected not found on tag delete, got %v", err)
	}

	account, err := repo.CreateAccount(ctx, domain.Account{FirstName: "Ada", LastName: "Petrova", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	content, err := repo.CreateContentWithTags(ctx, domain.Content{Title: "Before", Body: "body", AccountID: account.ID, Status: domain.StatusDraft}, nil)
	if err != nil {
		t.Fatalf("create content: %v", err)
	}

	updated, err := repo.UpdateContent(ctx, content.ID, map[string]any{"title": "After", "status": "active"})
	if err != nil {
		t.Fatalf("update content: %v", err)
	}
	if updated.Title != "After" || updated.Status != domain.StatusActive {
		t.Fatalf("partial update missed a column: %+v", updated)
	}
	if updated.Body != "body" {
		t.Fatalf("untouched column changed: %+v", updated)
	}
}
