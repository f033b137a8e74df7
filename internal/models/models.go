package models

import (
	"strings"
	"time"
)

// User is a forum account. Accounts are deactivated, never deleted, so the
// content they authored keeps its author.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:254" json:"-"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

// Session binds a cookie value to a user until ExpiresAt.
type Session struct {
	ID        string    `gorm:"primarykey;size:36"`
	UserID    uint      `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

// Question is owned by its author and carries two independent voter sets.
type Question struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	AuthorID    *uint     `gorm:"index" json:"authorId"`
	Author      *User     `gorm:"constraint:OnDelete:SET NULL" json:"author,omitempty"`
	Topic       string    `gorm:"size:200;not null" json:"topic"`
	TopicFold   string    `gorm:"type:text;not null;default:''" json:"-"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Upvoters    []User    `gorm:"many2many:question_upvotes" json:"-"`
	Downvoters  []User    `gorm:"many2many:question_downvotes" json:"-"`
	Answers     []Answer  `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
}

// Answer belongs to exactly one question and goes away with it.
type Answer struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	AuthorID   *uint     `gorm:"index" json:"authorId"`
	Author     *User     `gorm:"constraint:OnDelete:SET NULL" json:"author,omitempty"`
	QuestionID uint      `gorm:"not null;index" json:"questionId"`
	Reply      string    `gorm:"type:text;not null" json:"reply"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FoldTopic is the case-folded form of a topic that search matches against.
// SQLite's LOWER only folds ASCII, so this is the one place topics fold.
func FoldTopic(topic string) string {
	return strings.ToLower(topic)
}

// AuthoredBy reports whether userID wrote the question.
func (q *Question) AuthoredBy(userID uint) bool {
	return q.AuthorID != nil && *q.AuthorID == userID
}

// AuthoredBy reports whether userID wrote the answer.
func (a *Answer) AuthoredBy(userID uint) bool {
	return a.AuthorID != nil && *a.AuthorID == userID
}
