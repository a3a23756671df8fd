package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
)

type FormRepo struct{ db *gorm.DB }

func NewFormRepo(db *gorm.DB) *FormRepo { return &FormRepo{db: db} }

func (r *FormRepo) Create(ctx context.Context, f *domain.Form) error {
	// form + answers 一次事务写入，校验失败不会留半截数据
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(f).Error
	})
}

func (r *FormRepo) FindByID(ctx context.Context, id string) (*domain.Form, error) {
	var f domain.Form
	err := r.db.WithContext(ctx).
		Preload("Template").
		Preload("Template.Author").
		Preload("Template.Questions", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("User").
		Preload("Answers").
		Preload("Answers.Question").
		First(&f, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ReplaceAnswers 先删全部旧答案再整组插入，不做合并
func (r *FormRepo) ReplaceAnswers(ctx context.Context, formID string, answers []domain.Answer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("form_id = ?", formID).Delete(&domain.Answer{}).Error; err != nil {
			return err
		}
		if len(answers) == 0 {
			return nil
		}
		return tx.Create(&answers).Error
	})
}

func (r *FormRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("form_id = ?", id).Delete(&domain.Answer{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Form{}).Error
	})
}

func (r *FormRepo) ByUser(ctx context.Context, userID string, offset, limit int) ([]domain.Form, int64, error) {
	base := r.db.WithContext(ctx).Model(&domain.Form{}).Where("user_id = ?", userID)
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var fs []domain.Form
	err := base.
		Preload("Template").
		Preload("Template.Author").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&fs).Error
	if err != nil {
		return nil, 0, err
	}
	return fs, total, nil
}

func (r *FormRepo) ByTemplate(ctx context.Context, templateID string, offset, limit int) ([]domain.Form, int64, error) {
	base := r.db.WithContext(ctx).Model(&domain.Form{}).Where("template_id = ?", templateID)
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var fs []domain.Form
	err := base.
		Preload("User").
		Preload("Answers").
		Preload("Answers.Question").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&fs).Error
	if err != nil {
		return nil, 0, err
	}
	return fs, total, nil
}

func (r *FormRepo) CountByTemplate(ctx context.Context, templateID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Form{}).
		Where("template_id = ?", templateID).Count(&n).Error
	return n, err
}

func (r *FormRepo) AnswersByTemplate(ctx context.Context, templateID string) ([]domain.Answer, error) {
	var as []domain.Answer
	err := r.db.WithContext(ctx).Model(&domain.Answer{}).
		Joins("JOIN forms ON forms.id = answers.form_id").
		Where("forms.template_id = ?", templateID).
		Find(&as).Error
	return as, err
}
