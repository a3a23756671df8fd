package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
)

type TemplateRepo struct{ db *gorm.DB }

func NewTemplateRepo(db *gorm.DB) *TemplateRepo { return &TemplateRepo{db: db} }

func (r *TemplateRepo) Create(ctx context.Context, t *domain.Template) error {
	// Tags/AllowedUsers 由 service 先行整理好，这里只写关联表不回写实体
	return r.db.WithContext(ctx).
		Omit("Tags.*", "AllowedUsers.*").
		Create(t).Error
}

func (r *TemplateRepo) FindByID(ctx context.Context, id string) (*domain.Template, error) {
	var t domain.Template
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Tags").
		Preload("AllowedUsers").
		First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.fillCounts(ctx, []*domain.Template{&t}); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepo) Save(ctx context.Context, t *domain.Template) error {
	// 只更新标量字段，关系另走 Replace*
	return r.db.WithContext(ctx).Omit("Author", "Questions", "Tags", "AllowedUsers").Save(t).Error
}

func (r *TemplateRepo) ReplaceQuestions(ctx context.Context, templateID string, qs []domain.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", templateID).Delete(&domain.Question{}).Error; err != nil {
			return err
		}
		if len(qs) == 0 {
			return nil
		}
		return tx.Create(&qs).Error
	})
}

func (r *TemplateRepo) ReplaceTags(ctx context.Context, templateID string, tags []domain.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t := domain.Template{ID: templateID}
		return tx.Model(&t).Omit("Tags.*").Association("Tags").Replace(&tags)
	})
}

func (r *TemplateRepo) ReplaceAllowedUsers(ctx context.Context, templateID string, userIDs []string) error {
	users := make([]domain.User, 0, len(userIDs))
	for _, id := range userIDs {
		users = append(users, domain.User{ID: id})
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t := domain.Template{ID: templateID}
		return tx.Model(&t).Omit("AllowedUsers.*").Association("AllowedUsers").Replace(&users)
	})
}

// DeleteCascade 依赖顺序：answers → comments → likes → forms → questions → 关联表 → template
func (r *TemplateRepo) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		forms := tx.Model(&domain.Form{}).Select("id").Where("template_id = ?", id)
		if err := tx.Where("form_id IN (?)", forms).Delete(&domain.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", id).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", id).Delete(&domain.Form{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", id).Delete(&domain.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM template_tags WHERE template_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM template_allowed_users WHERE template_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Template{}).Error
	})
}

// visibilityScope 未登录只看公开；登录用户额外能看自己的和被授权的
func visibilityScope(db *gorm.DB, viewerID string) *gorm.DB {
	if viewerID == "" {
		return db.Where("is_public = ?", true)
	}
	return db.Where(
		"is_public = ? OR author_id = ? OR EXISTS (SELECT 1 FROM template_allowed_users tau WHERE tau.template_id = templates.id AND tau.user_id = ?)",
		true, viewerID, viewerID,
	)
}

func (r *TemplateRepo) Search(ctx context.Context, query, viewerID string, offset, limit int) ([]domain.Template, int64, error) {
	like := "%" + strings.ToLower(query) + "%"
	base := r.db.WithContext(ctx).Model(&domain.Template{}).Where(
		r.db.Where("LOWER(title) LIKE ?", like).
			Or("LOWER(description) LIKE ?", like).
			Or("EXISTS (SELECT 1 FROM template_tags tt JOIN tags tg ON tg.id = tt.tag_id WHERE tt.template_id = templates.id AND LOWER(tg.name) LIKE ?)", like).
			Or("EXISTS (SELECT 1 FROM questions q WHERE q.template_id = templates.id AND (LOWER(q.title) LIKE ? OR LOWER(q.description) LIKE ?))", like, like),
	)
	base = visibilityScope(base, viewerID)
	return r.page(ctx, base, offset, limit)
}

func (r *TemplateRepo) Popular(ctx context.Context, limit int) ([]domain.Template, error) {
	var ts []domain.Template
	err := r.db.WithContext(ctx).Model(&domain.Template{}).
		Preload("Author").
		Order("(SELECT COUNT(*) FROM forms WHERE forms.template_id = templates.id) DESC").
		Limit(limit).
		Find(&ts).Error
	if err != nil {
		return nil, err
	}
	if err := r.fillCountsSlice(ctx, ts); err != nil {
		return nil, err
	}
	return ts, nil
}

func (r *TemplateRepo) Latest(ctx context.Context, limit int) ([]domain.Template, error) {
	var ts []domain.Template
	err := r.db.WithContext(ctx).Model(&domain.Template{}).
		Preload("Author").
		Where("is_public = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&ts).Error
	if err != nil {
		return nil, err
	}
	if err := r.fillCountsSlice(ctx, ts); err != nil {
		return nil, err
	}
	return ts, nil
}

func (r *TemplateRepo) ByTag(ctx context.Context, tag, viewerID string, offset, limit int) ([]domain.Template, int64, error) {
	base := r.db.WithContext(ctx).Model(&domain.Template{}).Where(
		"EXISTS (SELECT 1 FROM template_tags tt JOIN tags tg ON tg.id = tt.tag_id WHERE tt.template_id = templates.id AND tg.name = ?)",
		tag,
	)
	base = visibilityScope(base, viewerID)
	return r.page(ctx, base, offset, limit)
}

func (r *TemplateRepo) ByAuthor(ctx context.Context, authorID string, offset, limit int) ([]domain.Template, int64, error) {
	base := r.db.WithContext(ctx).Model(&domain.Template{}).Where("author_id = ?", authorID)
	return r.page(ctx, base, offset, limit)
}

func (r *TemplateRepo) page(ctx context.Context, base *gorm.DB, offset, limit int) ([]domain.Template, int64, error) {
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ts []domain.Template
	err := base.
		Preload("Author").
		Preload("Tags").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&ts).Error
	if err != nil {
		return nil, 0, err
	}
	if err := r.fillCountsSlice(ctx, ts); err != nil {
		return nil, 0, err
	}
	return ts, total, nil
}

type relCount struct {
	TemplateID string
	N          int64
}

func (r *TemplateRepo) fillCountsSlice(ctx context.Context, ts []domain.Template) error {
	ptrs := make([]*domain.Template, len(ts))
	for i := range ts {
		ptrs[i] = &ts[i]
	}
	return r.fillCounts(ctx, ptrs)
}

// fillCounts 批量补 formsCount / likesCount，避免逐条查询
func (r *TemplateRepo) fillCounts(ctx context.Context, ts []*domain.Template) error {
	if len(ts) == 0 {
		return nil
	}
	ids := make([]string, len(ts))
	byID := make(map[string]*domain.Template, len(ts))
	for i, t := range ts {
		ids[i] = t.ID
		byID[t.ID] = t
	}

	var forms []relCount
	if err := r.db.WithContext(ctx).Model(&domain.Form{}).
		Select("template_id, COUNT(*) AS n").
		Where("template_id IN ?", ids).
		Group("template_id").
		Scan(&forms).Error; err != nil {
		return err
	}
	for _, c := range forms {
		byID[c.TemplateID].FormsCount = c.N
	}

	var likes []relCount
	if err := r.db.WithContext(ctx).Model(&domain.Like{}).
		Select("template_id, COUNT(*) AS n").
		Where("template_id IN ?", ids).
		Group("template_id").
		Scan(&likes).Error; err != nil {
		return err
	}
	for _, c := range likes {
		byID[c.TemplateID].LikesCount = c.N
	}
	return nil
}
