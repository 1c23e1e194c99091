package domain

import "time"

type ContentStatus string

const (
	StatusActive   ContentStatus = "active"
	StatusDraft    ContentStatus = "draft"
	StatusArchived ContentStatus = "archived"
)

func ParseContentStatus(raw string) (ContentStatus, bool) {
	switch ContentStatus(raw) {
	case StatusActive, StatusDraft, StatusArchived:
		return ContentStatus(raw), true
	}
	return "", false
}

type Account struct {
	ID        uint
	FirstName string
	LastName  string
	Email     string
	Profile   *Profile
	Contents  []Content
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Profile struct {
	ID          uint
	Description string
	AccountID   uint
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Content struct {
	ID        uint
	Title     string
	Body      string
	AccountID uint
	Account   *Account
	Status    ContentStatus
	Tags      []Tag
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Tag struct {
	ID        uint
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ContentTag struct {
	ID        uint
	ContentID uint
	TagID     uint
}

type ContentPage struct {
	Items       []Content
	CurrentPage int
	TotalPages  int
}
