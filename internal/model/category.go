package model

import "time"

// Category is a colored label a user can attach to todos by name.
type Category struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	Name      string    `json:"name" gorm:"not null"`
	Color     string    `json:"color"`
	UserID    UserID    `json:"userId" gorm:"type:text;not null;index:idx_categories_user"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c Category) Owner() UserID {
	return c.UserID
}
