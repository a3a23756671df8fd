package domain

import (
	"context"
	"time"
)

type Form struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	TemplateID string    `gorm:"size:36;index" json:"templateId"`
	Template   *Template `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	UserID     string    `gorm:"size:36;index" json:"userId"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Answers    []Answer  `gorm:"foreignKey:FormID" json:"answers,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Form) TableName() string { return "forms" }

// Answer 三个值字段按题型恰好启用一个，更新时整组重建不做合并
type Answer struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	FormID       string    `gorm:"size:36;index" json:"formId"`
	QuestionID   string    `gorm:"size:36;index" json:"questionId"`
	Question     *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	TextValue    *string   `gorm:"type:text" json:"textValue,omitempty"`
	NumericValue *int      `json:"numericValue,omitempty"`
	BooleanValue *bool     `json:"booleanValue,omitempty"`
}

func (Answer) TableName() string { return "answers" }

type FormRepository interface {
	// Create 连同 answers 一次性写入，单事务
	Create(ctx context.Context, f *Form) error
	// FindByID 预加载 template(+author+questions)/user/answers(+question)
	FindByID(ctx context.Context, id string) (*Form, error)
	// ReplaceAnswers 事务内先删旧 answers 再插入新组
	ReplaceAnswers(ctx context.Context, formID string, answers []Answer) error
	Delete(ctx context.Context, id string) error

	ByUser(ctx context.Context, userID string, offset, limit int) ([]Form, int64, error)
	ByTemplate(ctx context.Context, templateID string, offset, limit int) ([]Form, int64, error)
	CountByTemplate(ctx context.Context, templateID string) (int64, error)
	// AnswersByTemplate 跨全部表单取某模板的全部作答，供统计用
	AnswersByTemplate(ctx context.Context, templateID string) ([]Answer, error)
}
