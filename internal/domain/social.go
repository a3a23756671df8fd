package domain

import (
	"context"
	"time"
)

// Like (userId, templateId) 唯一对，存在即点过赞
type Like struct {
	UserID     string    `gorm:"primaryKey;size:36" json:"userId"`
	TemplateID string    `gorm:"primaryKey;size:36" json:"templateId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Like) TableName() string { return "likes" }

type Comment struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	TemplateID string    `gorm:"size:36;index" json:"templateId"`
	UserID     string    `gorm:"size:36" json:"userId"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content    string    `gorm:"type:text" json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Comment) TableName() string { return "comments" }

type SocialRepository interface {
	AddComment(ctx context.Context, c *Comment) error
	// Comments 按创建时间升序分页
	Comments(ctx context.Context, templateID string, offset, limit int) ([]Comment, int64, error)

	FindLike(ctx context.Context, userID, templateID string) (*Like, error)
	Like(ctx context.Context, userID, templateID string) error
	// Unlike 点赞不存在时静默成功
	Unlike(ctx context.Context, userID, templateID string) error
	CountLikes(ctx context.Context, templateID string) (int64, error)
}
