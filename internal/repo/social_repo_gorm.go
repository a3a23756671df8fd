package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
)

type SocialRepo struct{ db *gorm.DB }

func NewSocialRepo(db *gorm.DB) *SocialRepo { return &SocialRepo{db: db} }

func (r *SocialRepo) AddComment(ctx context.Context, c *domain.Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// Comments 按创建时间升序
func (r *SocialRepo) Comments(ctx context.Context, templateID string, offset, limit int) ([]domain.Comment, int64, error) {
	base := r.db.WithContext(ctx).Model(&domain.Comment{}).Where("template_id = ?", templateID)
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var cs []domain.Comment
	err := base.
		Preload("User").
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&cs).Error
	if err != nil {
		return nil, 0, err
	}
	return cs, total, nil
}

func (r *SocialRepo) FindLike(ctx context.Context, userID, templateID string) (*domain.Like, error) {
	var l domain.Like
	err := r.db.WithContext(ctx).
		First(&l, "user_id = ? AND template_id = ?", userID, templateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *SocialRepo) Like(ctx context.Context, userID, templateID string) error {
	return r.db.WithContext(ctx).Create(&domain.Like{UserID: userID, TemplateID: templateID}).Error
}

// Unlike 点赞不存在时静默成功
func (r *SocialRepo) Unlike(ctx context.Context, userID, templateID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND template_id = ?", userID, templateID).
		Delete(&domain.Like{}).Error
}

func (r *SocialRepo) CountLikes(ctx context.Context, templateID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Like{}).
		Where("template_id = ?", templateID).Count(&n).Error
	return n, err
}
