package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
	"github.com/mohamim360/FormBuilderApp-Backend/pkg/utils"
)

type TagRepo struct{ db *gorm.DB }

func NewTagRepo(db *gorm.DB) *TagRepo { return &TagRepo{db: db} }

// FindOrCreate 名称精确匹配（区分大小写），缺失的创建；保持入参顺序并去重
func (r *TagRepo) FindOrCreate(ctx context.Context, names []string) ([]domain.Tag, error) {
	out := make([]domain.Tag, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		var tag domain.Tag
		err := r.db.WithContext(ctx).First(&tag, "name = ?", name).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = domain.Tag{ID: utils.NewID(), Name: name}
			if e := r.db.WithContext(ctx).Create(&tag).Error; e != nil {
				// 并发兜底：唯一冲突 → 再查一次
				if isDupKey(e) {
					if e2 := r.db.WithContext(ctx).First(&tag, "name = ?", name).Error; e2 != nil {
						return nil, e2
					}
				} else {
					return nil, e
				}
			}
		} else if err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, nil
}

func (r *TagRepo) Popular(ctx context.Context, limit int) ([]domain.TagCount, error) {
	var out []domain.TagCount
	err := r.db.WithContext(ctx).Model(&domain.Tag{}).
		Select("tags.id, tags.name, COUNT(tt.template_id) AS count").
		Joins("LEFT JOIN template_tags tt ON tt.tag_id = tags.id").
		Group("tags.id, tags.name").
		Order("count DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func isDupKey(err error) bool {
	// 不依赖 gorm.ErrDuplicatedKey，避免驱动差异
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
