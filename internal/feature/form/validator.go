package form

import (
	"fmt"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/apperr"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
)

// AnswerInput 提交/更新表单时的单题作答
type AnswerInput struct {
	QuestionID   string  `json:"questionId" binding:"required"`
	TextValue    *string `json:"textValue"`
	NumericValue *int    `json:"numericValue"`
	BooleanValue *bool   `json:"booleanValue"`
}

// ValidateAnswers 按固定优先级 fail-fast 校验：
//  1. 必答题完整性（按题目 order 顺序）
//  2. questionId 必须属于本模板
//  3. 值字段与题型匹配
//  4. 单选值必须在选项集合内
//
// 错误文案是 API 契约，调用方原样透出。
func ValidateAnswers(questions []domain.Question, answers []AnswerInput) error {
	answered := make(map[string]bool, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = true
	}
	for _, q := range questions {
		if q.IsRequired && !answered[q.ID] {
			return apperr.BadRequest(fmt.Sprintf("Question %q is required", q.Title))
		}
	}

	byID := make(map[string]*domain.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			return apperr.BadRequest(fmt.Sprintf("Question with ID %s not found", a.QuestionID))
		}
		switch q.Type {
		case domain.QuestionInteger:
			if a.NumericValue == nil {
				return apperr.BadRequest(fmt.Sprintf("Question %q requires a numeric value", q.Title))
			}
		case domain.QuestionCheckbox:
			if a.BooleanValue == nil {
				return apperr.BadRequest(fmt.Sprintf("Question %q requires a boolean value", q.Title))
			}
		case domain.QuestionSingleLineText, domain.QuestionMultiLineText:
			if a.TextValue == nil {
				return apperr.BadRequest(fmt.Sprintf("Question %q requires a text value", q.Title))
			}
		case domain.QuestionSingleChoice:
			if a.TextValue == nil {
				return apperr.BadRequest(fmt.Sprintf("Question %q requires a text value", q.Title))
			}
			if !contains(q.Options, *a.TextValue) {
				return apperr.BadRequest(fmt.Sprintf("Answer %q is not one of the allowed options", *a.TextValue))
			}
		}
	}
	return nil
}

func contains(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}
