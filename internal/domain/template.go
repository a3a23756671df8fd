package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

// TemplateAccess 模板访问级别
type TemplateAccess string

const (
	AccessPublic     TemplateAccess = "PUBLIC"
	AccessRestricted TemplateAccess = "RESTRICTED"
)

func (a TemplateAccess) Valid() bool {
	return a == AccessPublic || a == AccessRestricted
}

// QuestionType 闭合题型枚举，新增题型必须同步校验/统计分支
type QuestionType string

const (
	QuestionSingleLineText QuestionType = "SINGLE_LINE_TEXT"
	QuestionMultiLineText  QuestionType = "MULTI_LINE_TEXT"
	QuestionInteger        QuestionType = "INTEGER"
	QuestionCheckbox       QuestionType = "CHECKBOX"
	QuestionSingleChoice   QuestionType = "SINGLE_CHOICE"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionSingleLineText, QuestionMultiLineText, QuestionInteger,
		QuestionCheckbox, QuestionSingleChoice:
		return true
	}
	return false
}

type Template struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	AuthorID    string         `gorm:"size:36;index" json:"authorId"`
	Author      *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Title       string         `gorm:"size:255" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Topic       string         `gorm:"size:64" json:"topic"`
	ImageURL    string         `gorm:"size:512" json:"imageUrl,omitempty"`
	IsPublic    bool           `json:"isPublic"`
	Access      TemplateAccess `gorm:"size:16;default:PUBLIC" json:"access"`

	// Questions 顺序即提交顺序，order 从 0 连续编号
	Questions    []Question `gorm:"foreignKey:TemplateID" json:"questions,omitempty"`
	Tags         []Tag      `gorm:"many2many:template_tags" json:"tags,omitempty"`
	AllowedUsers []User     `gorm:"many2many:template_allowed_users" json:"allowedUsers,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// 列表/详情接口附带的统计数，查询时填充，不落库
	FormsCount int64 `gorm:"-" json:"formsCount"`
	LikesCount int64 `gorm:"-" json:"likesCount"`
}

func (Template) TableName() string { return "templates" }

// IsAllowed 判断 uid 是否在允许名单里
func (t *Template) IsAllowed(uid string) bool {
	for _, u := range t.AllowedUsers {
		if u.ID == uid {
			return true
		}
	}
	return false
}

type Question struct {
	ID          string                     `gorm:"primaryKey;size:36" json:"id"`
	TemplateID  string                     `gorm:"size:36;index" json:"templateId"`
	Title       string                     `gorm:"size:255" json:"title"`
	Description string                     `gorm:"type:text" json:"description"`
	Type        QuestionType               `gorm:"size:32" json:"type"`
	IsRequired  bool                       `json:"isRequired"`
	ShowInTable bool                       `json:"showInTable"`
	Options     datatypes.JSONSlice[string] `json:"options"`
	Order       int                        `gorm:"column:sort_order" json:"order"`
}

func (Question) TableName() string { return "questions" }

type TemplateRepository interface {
	Create(ctx context.Context, t *Template) error
	// FindByID 带 author/questions(按 order)/tags/allowedUsers 预加载，并填充计数
	FindByID(ctx context.Context, id string) (*Template, error)
	Save(ctx context.Context, t *Template) error

	// 关系整组替换，不做增量 diff（沿用原系统的 delete-then-recreate 语义）
	ReplaceQuestions(ctx context.Context, templateID string, qs []Question) error
	ReplaceTags(ctx context.Context, templateID string, tags []Tag) error
	ReplaceAllowedUsers(ctx context.Context, templateID string, userIDs []string) error

	// DeleteCascade 按依赖顺序在单事务内删除模板及从属数据
	DeleteCascade(ctx context.Context, id string) error

	Search(ctx context.Context, query, viewerID string, offset, limit int) ([]Template, int64, error)
	Popular(ctx context.Context, limit int) ([]Template, error)
	Latest(ctx context.Context, limit int) ([]Template, error)
	ByTag(ctx context.Context, tag, viewerID string, offset, limit int) ([]Template, int64, error)
	ByAuthor(ctx context.Context, authorID string, offset, limit int) ([]Template, int64, error)
}
