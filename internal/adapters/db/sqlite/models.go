package sqlite

import "time"

type AccountModel struct {
	ID        uint   `gorm:"primaryKey"`
	FirstName string `gorm:"not null"`
	LastName  string `gorm:"not null"`
	Email     string `gorm:"not null;uniqueIndex"`
	Profile   *ProfileModel  `gorm:"foreignKey:AccountID"`
	Contents  []ContentModel `gorm:"foreignKey:AccountID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AccountModel) TableName() string { return "accounts" }

type ProfileModel struct {
	ID          uint `gorm:"primaryKey"`
	Description string
	AccountID   uint `gorm:"not null;uniqueIndex"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ProfileModel) TableName() string { return "profiles" }

type ContentModel struct {
	ID        uint          `gorm:"primaryKey"`
	Title     string        `gorm:"not null"`
	Body      string        `gorm:"not null"`
	AccountID uint          `gorm:"not null;index"`
	Account   *AccountModel `gorm:"foreignKey:AccountID"`
	Status    string        `gorm:"not null;default:'draft';index"`
	Tags      []TagModel    `gorm:"many2many:content_tags;joinForeignKey:ContentID;joinReferences:TagID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ContentModel) TableName() string { return "contents" }

type TagModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TagModel) TableName() string { return "tags" }

type ContentTagModel struct {
	ID        uint `gorm:"primaryKey"`
	ContentID uint `gorm:"not null;index:idx_content_tag"`
	TagID     uint `gorm:"not null;index:idx_content_tag"`
}

func (ContentTagModel) TableName() string { return "content_tags" }
