package domain

import "context"

// Tag 名称全局唯一（区分大小写），首次使用时创建，不主动回收孤儿标签
type Tag struct {
	ID   string `gorm:"primaryKey;size:36" json:"id"`
	Name string `gorm:"uniqueIndex;size:64" json:"name"`
}

func (Tag) TableName() string { return "tags" }

type TagCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type TagRepository interface {
	// FindOrCreate 按名称精确匹配复用已有标签，缺失的创建；保持入参顺序
	FindOrCreate(ctx context.Context, names []string) ([]Tag, error)
	// Popular 按被引用模板数降序
	Popular(ctx context.Context, limit int) ([]TagCount, error)
}
