package domain

import "context"

// PublishingRepository is the storage port. Update methods take partial
// column maps; zero matching rows surface as NotFoundError.
type PublishingRepository interface {
	CreateAccount(ctx context.Context, value Account) (Account, error)
	GetAccountByID(ctx context.Context, id uint) (Account, error)
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
	GetAccountWithRelations(ctx context.Context, id uint) (Account, error)
	ListAccounts(ctx context.Context, query string, limit int) ([]Account, error)
	UpdateAccount(ctx context.Context, id uint, fields map[string]any) (Account, error)
	DeleteAccount(ctx context.Context, id uint) error

	CreateProfile(ctx context.Context, value Profile) (Profile, error)
	GetProfileByAccountID(ctx context.Context, accountID uint) (Profile, error)
	UpdateProfileByAccountID(ctx context.Context, accountID uint, fields map[string]any) (Profile, error)
	DeleteProfileByAccountID(ctx context.Context, accountID uint) error

	CreateContentWithTags(ctx context.Context, value Content, tagNames []string) (Content, error)
	GetContentByID(ctx context.Context, id uint) (Content, error)
	GetContentWithRelations(ctx context.Context, id uint) (Content, error)
	ListContentPage(ctx context.Context, status *ContentStatus, page, pageSize int) ([]Content, int64, error)
	UpdateContent(ctx context.Context, id uint, fields map[string]any) (Content, error)
	DeleteContent(ctx context.Context, id uint) error

	CreateTag(ctx context.Context, value Tag) (Tag, error)
	GetTagByID(ctx context.Context, id uint) (Tag, error)
	ListTags(ctx context.Context, query string, limit int) ([]Tag, error)
	UpdateTag(ctx context.Context, id uint, fields map[string]any) (Tag, error)
	DeleteTag(ctx context.Context, id uint) error

	LinkTag(ctx context.Context, contentID, tagID uint) error
	UnlinkTag(ctx context.Context, contentID, tagID uint) error
	TagsForContent(ctx context.Context, contentID uint) ([]Tag, error)
}
