package sqlite

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/atvirokodosprendimai/pressroom/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

type PublishingRepository struct {
	db *gorm.DB
}

func Open(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{
		Logger: logger.New(
			log.New(os.Stderr, "", log.LstdFlags),
			logger.Config{SlowThreshold: 200 * time.Millisecond, LogLevel: logger.Warn},
		),
	})
}

func NewPublishingRepository(db *gorm.DB) *PublishingRepository {
	return &PublishingRepository{db: db}
}

func (r *PublishingRepository) CreateAccount(ctx context.Context, value domain.Account) (domain.Account, error) {
	m := AccountModel{FirstName: value.FirstName, LastName: value.LastName, Email: normalizeEmail(value.Email)}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Account{}, err
	}

	return domain.Account{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func (r *PublishingRepository) GetAccountByID(ctx context.Context, id uint) (domain.Account, error) {
	var m AccountModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.Account{}, orNotFound(err, domain.KindAccount)
	}
	return domain.Account{ID: m.ID, FirstName: m.FirstName, LastName: m.LastName, Email: m.Email, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}, nil
}

func (r *PublishingRepository) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	var m AccountModel
	if err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&m).Error; err != nil {
		return domain.Account{}, orNotFound(err, domain.KindAccount)
	}
	return domain.Account{ID: m.ID, FirstName: m.FirstName, LastName: m.LastName, Email: m.Email, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}, nil
}

func (r *PublishingRepository) GetAccountWithRelations(ctx context.Context, id uint) (domain.Account, error) {
	var m AccountModel
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("Contents").
		First(&m, id).Error
	if err != nil {
		return domain.Account{}, orNotFound(err, domain.KindAccount)
	}

	account := domain.Account{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Profile != nil {
		account.Profile = &domain.Profile{
			ID:          m.Profile.ID,
			Description: m.Profile.Description,
			AccountID:   m.Profile.AccountID,
			CreatedAt:   m.Profile.CreatedAt,
			UpdatedAt:   m.Profile.UpdatedAt,
		}
	}
	account.Contents = make([]domain.Content, 0, len(m.Contents))
	for _, c := range m.Contents {
		account.Contents = append(account.Contents, domain.Content{
			ID:        c.ID,
			Title:     c.Title,
			Body:      c.Body,
			AccountID: c.AccountID,
			Status:    domain.ContentStatus(c.Status),
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return account, nil
}

func (r *PublishingRepository) ListAccounts(ctx context.Context, query string, limit int) ([]domain.Account, error) {
	q := r.db.WithContext(ctx).Model(&AccountModel{})
	if strings.TrimSpace(query) != "" {
		like := "%" + strings.TrimSpace(query) + "%"
		q = q.Where("email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
	}
	rows := make([]AccountModel, 0)
	if err := q.Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Account, 0, len(rows))
	for _, m := range rows {
		result = append(result, domain.Account{ID: m.ID, FirstName: m.FirstName, LastName: m.LastName, Email: m.Email, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt})
	}
	return result, nil
}

func (r *PublishingRepository) UpdateAccount(ctx context.Context, id uint, fields map[string]any) (domain.Account, error) {
	if email, ok := fields["email"].(string); ok {
		fields["email"] = normalizeEmail(email)
	}
	if err := r.db.WithContext(ctx).Model(&AccountModel{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return domain.Account{}, err
	}
	var m AccountModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.Account{}, orNotFound(err, domain.KindAccount)
	}
	return domain.Account{ID: m.ID, FirstName: m.FirstName, LastName: m.LastName, Email: m.Email, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}, nil
}

func (r *PublishingRepository) DeleteAccount(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&AccountModel{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound(domain.KindAccount)
	}
	return nil
}

func (r *PublishingRepository) CreateProfile(ctx context.Context, value domain.Profile) (domain.Profile, error) {
	m := ProfileModel{Description: value.Description, AccountID: value.AccountID}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{ID: m.ID, Description: m.Description, AccountID: m.AccountID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}, nil
}

func (r *PublishingRepository) GetProfileByAccountID(ctx context.Context, accountID uint) (domain.Profile, error) {
	var m ProfileModel
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&m).Error; err != nil {
		return domain.Profile{}, orNotFound(err, domain.KindProfile)
	}
	return domain.Profile{ID: m.ID, Description: m.Description, AccountID: m.AccountID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}, nil
}

func (r *PublishingRepository) UpdateProfileByAccountID(ctx context.Context, accountID uint, fields map[string]any) (domain.Profile, error) {
	if err := r.db.WithContext(ctx).Model(&ProfileModel{}).Where("account_id = ?", accountID).Updates(fields).Error; err != nil {
		return domain.Profile{}, err
	}
	var m ProfileModel
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&m).Error; err != nil {
		return domain.Profile{}, orNotFound(err, domain.KindProfile)
	}
	return domain.Profile{ID: m.ID, Description: m.Description, AccountID: m.AccountID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}, nil
}

func (r *PublishingRepository) DeleteProfileByAccountID(ctx context.Context, accountID uint) error {
	res := r.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&ProfileModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound(domain.KindProfile)
	}
	return nil
}

func (r *PublishingRepository) CreateContentWithTags(ctx context.Context, value domain.Content, tagNames []string) (domain.Content, error) {
	m := ContentModel{
		Title:     value.Title,
		Body:      value.Body,
		AccountID: value.AccountID,
		Status:    defaultString(string(value.Status), string(domain.StatusDraft)),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		for _, name := range tagNames {
			if strings.TrimSpace(name) == "" {
				return domain.Invalid("name", "must not be empty")
			}
			t := TagModel{Name: name}
			if err := tx.Where("name = ?", name).FirstOrCreate(&t).Error; err != nil {
				return err
			}
			link := ContentTagModel{ContentID: m.ID, TagID: t.ID}
			if err := tx.Where("content_id = ? AND tag_id = ?", m.ID, t.ID).FirstOrCreate(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Content{}, err
	}

	return domain.Content{
		ID:        m.ID,
		Title:     m.Title,
		Body:      m.Body,
		AccountID: m.AccountID,
		Status:    domain.ContentStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func (r *PublishingRepository) GetContentByID(ctx context.Context, id uint) (domain.Content, error) {
	var m ContentModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.Content{}, orNotFound(err, domain.KindContent)
	}
	return domain.Content{ID: m.ID, Title: m.Title, Body: m.Body, AccountID: m.AccountID, Status: domain.ContentStatus(m.Status), CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}, nil
}

func (r *PublishingRepository) GetContentWithRelations(ctx context.Context, id uint) (domain.Content, error) {
	var m ContentModel
	err := r.db.WithContext(ctx).
		Preload("Account").
		Preload("Tags").
		First(&m, id).Error
	if err != nil {
		return domain.Content{}, orNotFound(err, domain.KindContent)
	}
	return contentWithRelations(m), nil
}

func (r *PublishingRepository) ListContentPage(ctx context.Context, status *domain.ContentStatus, page, pageSize int) ([]domain.Content, int64, error) {
	q := r.db.WithContext(ctx).Model(&ContentModel{})
	if status != nil {
		q = q.Where("status = ?", string(*status))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = r.db.WithContext(ctx).Model(&ContentModel{})
	if status != nil {
		q = q.Where("status = ?", string(*status))
	}
	rows := make([]ContentModel, 0)
	err := q.Preload("Account").
		Preload("Tags").
		Order("created_at DESC, id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.Content, 0, len(rows))
	for _, m := range rows {
		result = append(result, contentWithRelations(m))
	}
	return result, total, nil
}

func (r *PublishingRepository) UpdateContent(ctx context.Context, id uint, fields map[string]any) (domain.Content, error) {
	if err := r.db.WithContext(ctx).Model(&ContentModel{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return domain.Content{}, err
	}
	var m ContentModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.Content{}, orNotFound(err, domain.KindContent)
	}
	return domain.Content{ID: m.ID, Title: m.Title, Body: m.Body, AccountID: m.AccountID, Status: domain.ContentStatus(m.Status), CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}, nil
}

func (r *PublishingRepository) DeleteContent(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&ContentModel{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFound(domain.KindContent)
		}
		return tx.Where("content_id = ?", id).Delete(&ContentTagModel{}).Error
	})
}

func (r *PublishingRepository) CreateTag(ctx context.Context, value domain.Tag) (domain.Tag, error) {
	m := TagModel{Name: value.Name}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Tag{}, err
	}
	return domain.Tag{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}, nil
}

func (r *PublishingRepository) GetTagByID(ctx context.Context, id uint) (domain.Tag, error) {
	var m TagModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.Tag{}, orNotFound(err, domain.KindTag)
	}
	return domain.Tag{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}, nil
}

func (r *PublishingRepository) ListTags(ctx context.Context, query string, limit int) ([]domain.Tag, error) {
	q := r.db.WithContext(ctx).Model(&TagModel{})
	if strings.TrimSpace(query) != "" {
		like := "%" + strings.TrimSpace(query) + "%"
		q = q.Where("name LIKE ?", like)
	}
	rows := make([]TagModel, 0)
	if err := q.Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Tag, 0, len(rows))
	for _, m := range rows {
		result = append(result, domain.Tag{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt})
	}
	return result, nil
}

func (r *PublishingRepository) UpdateTag(ctx context.Context, id uint, fields map[string]any) (domain.Tag, error) {
	if err := r.db.WithContext(ctx).Model(&TagModel{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return domain.Tag{}, err
	}
	var m TagModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.Tag{}, orNotFound(err, domain.KindTag)
	}
	return domain.Tag{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}, nil
}

func (r *PublishingRepository) DeleteTag(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&TagModel{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFound(domain.KindTag)
		}
		return tx.Where("tag_id = ?", id).Delete(&ContentTagModel{}).Error
	})
}

func (r *PublishingRepository) LinkTag(ctx context.Context, contentID, tagID uint) error {
	m := ContentTagModel{ContentID: contentID, TagID: tagID}
	return r.db.WithContext(ctx).Where("content_id = ? AND tag_id = ?", contentID, tagID).FirstOrCreate(&m).Error
}

func (r *PublishingRepository) UnlinkTag(ctx context.Context, contentID, tagID uint) error {
	return r.db.WithContext(ctx).Where("content_id = ? AND tag_id = ?", contentID, tagID).Delete(&ContentTagModel{}).Error
}

func (r *PublishingRepository) TagsForContent(ctx context.Context, contentID uint) ([]domain.Tag, error) {
	rows := make([]TagModel, 0)
	err := r.db.WithContext(ctx).Raw(`
SELECT t.id,
       t.name,
       t.created_at,
       t.updated_at
FROM tags t
JOIN content_tags ct ON ct.tag_id = t.id
WHERE ct.content_id = ?
ORDER BY t.id ASC
`, contentID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.Tag, 0, len(rows))
	for _, m := range rows {
		result = append(result, domain.Tag{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt})
	}
	return result, nil
}

func contentWithRelations(m ContentModel) domain.Content {
	c := domain.Content{
		ID:        m.ID,
		Title:     m.Title,
		Body:      m.Body,
		AccountID: m.AccountID,
		Status:    domain.ContentStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Account != nil {
		c.Account = &domain.Account{
			ID:        m.Account.ID,
			FirstName: m.Account.FirstName,
			LastName:  m.Account.LastName,
			Email:     m.Account.Email,
			CreatedAt: m.Account.CreatedAt,
			UpdatedAt: m.Account.UpdatedAt,
		}
	}
	c.Tags = make([]domain.Tag, 0, len(m.Tags))
	for _, t := range m.Tags {
		c.Tags = append(c.Tags, domain.Tag{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt})
	}
	return c
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func defaultString(input, fallback string) string {
	if strings.TrimSpace(input) == "" {
		return fallback
	}

	return input
}

func orNotFound(err error, kind domain.EntityKind) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(kind)
	}
	return err
}
