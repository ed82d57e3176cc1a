package model

import "time"

// User stores Telegram user metadata. Its ID is the owner id of the user's records.
type User struct {
	ID         string `gorm:"primaryKey;type:text"`
	TelegramID int64  `gorm:"uniqueIndex"`
	FirstName  string
	LastName   string
	Username   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (u User) OwnerID() UserID {
	return UserID(u.ID)
}
