package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/atvirokodosprendimai/pressroom/internal/domain"
	"github.com/rs/zerolog"
)

type WriteService struct {
	repo  domain.PublishingRepository
	hooks *Hooks
	log   zerolog.Logger
}

func NewWriteService(repo domain.PublishingRepository, hooks *Hooks, log zerolog.Logger) *WriteService {
	s := &WriteService{repo: repo, hooks: hooks, log: log}
	s.registerDefaultHooks()
	return s
}

func (s *WriteService) registerDefaultHooks() {
	s.hooks.OnAfterCreate(domain.KindAccount, func(ctx context.Context, entity any) error {
		account, ok := entity.(domain.Account)
		if !ok {
			return nil
		}
		s.log.Info().Uint("account_id", account.ID).Str("email", account.Email).Msg("account created")
		return nil
	})
	s.hooks.OnAfterCreate(domain.KindContent, func(ctx context.Context, entity any) error {
		content, ok := entity.(domain.Content)
		if !ok {
			return nil
		}
		author, err := s.repo.GetAccountByID(ctx, content.AccountID)
		if err != nil {
			return fmt.Errorf("load author %d: %w", content.AccountID, err)
		}
		s.log.Info().Uint("content_id", content.ID).Str("author", author.Email).Msg("content created")
		return nil
	})
}

func (s *WriteService) CreateAccount(ctx context.Context, in CreateAccountInput) (domain.Account, error) {
	if err := validateInput(in); err != nil {
		return domain.Account{}, err
	}
	existing, err := s.repo.GetAccountByEmail(ctx, in.Email)
	if err == nil && existing.ID != 0 {
		return domain.Account{}, domain.Invalid("email", "already in use")
	}
	if err != nil && !domain.IsNotFound(err) {
		return domain.Account{}, err
	}

	account, err := s.repo.CreateAccount(ctx, domain.Account{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
	})
	if err != nil {
		return domain.Account{}, err
	}
	s.hooks.FireAfterCreate(ctx, domain.KindAccount, account.ID, account)
	return account, nil
}

func (s *WriteService) UpdateAccount(ctx context.Context, id uint, in UpdateAccountInput) (domain.Account, error) {
	if id == 0 {
		return domain.Account{}, domain.Invalid("id", "is required")
	}
	if err := validateInput(in); err != nil {
		return domain.Account{}, err
	}
	if in.Email != nil {
		existing, err := s.repo.GetAccountByEmail(ctx, *in.Email)
		if err == nil && existing.ID != id {
			return domain.Account{}, domain.Invalid("email", "already in use")
		}
		if err != nil && !domain.IsNotFound(err) {
			return domain.Account{}, err
		}
	}

	fields := map[string]any{}
	putString(fields, "first_name", in.FirstName)
	putString(fields, "last_name", in.LastName)
	putString(fields, "email", in.Email)
	if len(fields) == 0 {
		return s.repo.GetAccountByID(ctx, id)
	}
	return s.repo.UpdateAccount(ctx, id, fields)
}

func (s *WriteService) DeleteAccount(ctx context.Context, id uint) error {
	if id == 0 {
		return domain.Invalid("id", "is required")
	}
	return s.repo.DeleteAccount(ctx, id)
}

func (s *WriteService) CreateProfile(ctx context.Context, in CreateProfileInput) (domain.Profile, error) {
	if err := validateInput(in); err != nil {
		return domain.Profile{}, err
	}
	if _, err := s.repo.GetAccountByID(ctx, in.AccountID); err != nil {
		return domain.Profile{}, err
	}
	if existing, err := s.repo.GetProfileByAccountID(ctx, in.AccountID); err == nil && existing.ID != 0 {
		return domain.Profile{}, domain.Invalid("account_id", "profile already exists for this account")
	} else if err != nil && !domain.IsNotFound(err) {
		return domain.Profile{}, err
	}

	profile, err := s.repo.CreateProfile(ctx, domain.Profile{
		Description: in.Description,
		AccountID:   in.AccountID,
	})
	if err != nil {
		return domain.Profile{}, err
	}
	s.hooks.FireAfterCreate(ctx, domain.KindProfile, profile.ID, profile)
	return profile, nil
}

func (s *WriteService) UpdateProfileByAccountID(ctx context.Context, accountID uint, in UpdateProfileInput) (domain.Profile, error) {
	if accountID == 0 {
		return domain.Profile{}, domain.Invalid("account_id", "is required")
	}
	fields := map[string]any{}
	putString(fields, "description", in.Description)
	if len(fields) == 0 {
		return s.repo.GetProfileByAccountID(ctx, accountID)
	}
	return s.repo.UpdateProfileByAccountID(ctx, accountID, fields)
}

func (s *WriteService) DeleteProfileByAccountID(ctx context.Context, accountID uint) error {
	if accountID == 0 {
		return domain.Invalid("account_id", "is required")
	}
	return s.repo.DeleteProfileByAccountID(ctx, accountID)
}

// CreateContentWithTags runs the composite write: the owning account is
// checked first, then content insert, tag find-or-create and linking execute
// in one transaction. The afterCreate hook fires only after commit.
func (s *WriteService) CreateContentWithTags(ctx context.Context, in CreateContentInput) (domain.Content, error) {
	if err := validateInput(in); err != nil {
		return domain.Content{}, err
	}
	status := domain.StatusDraft
	if strings.TrimSpace(in.Status) != "" {
		parsed, ok := domain.ParseContentStatus(strings.TrimSpace(in.Status))
		if !ok {
			return domain.Content{}, domain.Invalid("status", "must be one of active, draft, archived")
		}
		status = parsed
	}
	if _, err := s.repo.GetAccountByID(ctx, in.AccountID); err != nil {
		return domain.Content{}, err
	}

	content, err := s.repo.CreateContentWithTags(ctx, domain.Content{
		Title:     in.Title,
		Body:      in.Body,
		AccountID: in.AccountID,
		Status:    status,
	}, in.TagNames)
	if err != nil {
		if domain.IsValidation(err) || domain.IsNotFound(err) {
			return domain.Content{}, err
		}
		return domain.Content{}, &domain.TransactionError{Op: "create content with tags", Err: err}
	}
	s.hooks.FireAfterCreate(ctx, domain.KindContent, content.ID, content)
	return content, nil
}

func (s *WriteService) UpdateContent(ctx context.Context, id uint, in UpdateContentInput) (domain.Content, error) {
	if id == 0 {
		return domain.Content{}, domain.Invalid("id", "is required")
	}
	if err := validateInput(in); err != nil {
		return domain.Content{}, err
	}
	fields := map[string]any{}
	putString(fields, "title", in.Title)
	putString(fields, "body", in.Body)
	if in.Status != nil {
		parsed, ok := domain.ParseContentStatus(strings.TrimSpace(*in.Status))
		if !ok {
			return domain.Content{}, domain.Invalid("status", "must be one of active, draft, archived")
		}
		fields["status"] = string(parsed)
	}
	if len(fields) == 0 {
		return s.repo.GetContentByID(ctx, id)
	}
	return s.repo.UpdateContent(ctx, id, fields)
}

func (s *WriteService) DeleteContent(ctx context.Context, id uint) error {
	if id == 0 {
		return domain.Invalid("id", "is required")
	}
	return s.repo.DeleteContent(ctx, id)
}

func (s *WriteService) CreateTag(ctx context.Context, in CreateTagInput) (domain.Tag, error) {
	if err := validateInput(in); err != nil {
		return domain.Tag{}, err
	}
	tag, err := s.repo.CreateTag(ctx, domain.Tag{Name: in.Name})
	if err != nil {
		return domain.Tag{}, err
	}
	s.hooks.FireAfterCreate(ctx, domain.KindTag, tag.ID, tag)
	return tag, nil
}

func (s *WriteService) UpdateTag(ctx context.Context, id uint, in UpdateTagInput) (domain.Tag, error) {
	if id == 0 {
		return domain.Tag{}, domain.Invalid("id", "is required")
	}
	if err := validateInput(in); err != nil {
		return domain.Tag{}, err
	}
	fields := map[string]any{}
	putString(fields, "name", in.Name)
	if len(fields) == 0 {
		return s.repo.GetTagByID(ctx, id)
	}
	return s.repo.UpdateTag(ctx, id, fields)
}

func (s *WriteService) DeleteTag(ctx context.Context, id uint) error {
	if id == 0 {
		return domain.Invalid("id", "is required")
	}
	return s.repo.DeleteTag(ctx, id)
}

// AddTagToContent links an existing tag to existing content. A missing row
// on either side reports one combined not-found; re-linking an existing
// pair is a no-op.
func (s *WriteService) AddTagToContent(ctx context.Context, contentID, tagID uint) error {
	if err := s.checkPairExists(ctx, contentID, tagID); err != nil {
		return err
	}
	return s.repo.LinkTag(ctx, contentID, tagID)
}

// RemoveTagFromContent unlinks a pairing. Removing a pairing that never
// existed is a silent no-op, but both rows must exist.
func (s *WriteService) RemoveTagFromContent(ctx context.Context, contentID, tagID uint) error {
	if err := s.checkPairExists(ctx, contentID, tagID); err != nil {
		return err
	}
	return s.repo.UnlinkTag(ctx, contentID, tagID)
}

func (s *WriteService) checkPairExists(ctx context.Context, contentID, tagID uint) error {
	if contentID == 0 || tagID == 0 {
		return domain.Invalid("id", "content and tag ids are required")
	}
	if _, err := s.repo.GetContentByID(ctx, contentID); err != nil {
		if domain.IsNotFound(err) {
			return domain.NotFound(domain.KindContentOrTag)
		}
		return err
	}
	if _, err := s.repo.GetTagByID(ctx, tagID); err != nil {
		if domain.IsNotFound(err) {
			return domain.NotFound(domain.KindContentOrTag)
		}
		return err
	}
	return nil
}

func putString(fields map[string]any, column string, value *string) {
	if value != nil {
		fields[column] = *value
	}
}
