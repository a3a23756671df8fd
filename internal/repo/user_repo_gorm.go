package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.User{})
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	if err := tx.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

// DeleteCascade 单事务内清掉用户名下模板的从属数据和用户自己的提交，
// 顺序：answers → comments → likes → forms → questions → 关联表 → templates → user
func (r *UserRepo) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownTemplates := tx.Model(&domain.Template{}).Select("id").Where("author_id = ?", id)
		affectedForms := tx.Model(&domain.Form{}).Select("id").
			Where("template_id IN (?) OR user_id = ?", ownTemplates, id)

		if err := tx.Where("form_id IN (?)", affectedForms).Delete(&domain.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id IN (?) OR user_id = ?", ownTemplates, id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id IN (?) OR user_id = ?", ownTemplates, id).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id IN (?) OR user_id = ?", ownTemplates, id).Delete(&domain.Form{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id IN (?)", ownTemplates).Delete(&domain.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM template_tags WHERE template_id IN (SELECT id FROM templates WHERE author_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM template_allowed_users WHERE template_id IN (SELECT id FROM templates WHERE author_id = ?) OR user_id = ?", id, id).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&domain.Template{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.User{}).Error
	})
}
