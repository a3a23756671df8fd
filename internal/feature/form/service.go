// Package form 表单（模板的一次作答）的提交与生命周期
package form

import (
	"context"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/apperr"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/policy"
	"github.com/mohamim360/FormBuilderApp-Backend/pkg/utils"
)

type Service struct {
	forms     domain.FormRepository
	templates domain.TemplateRepository
}

func NewService(forms domain.FormRepository, templates domain.TemplateRepository) *Service {
	return &Service{forms: forms, templates: templates}
}

// Create 提交表单：FILL 权限 → 全量校验 → 连同 answers 单事务落库
func (s *Service) Create(ctx context.Context, p policy.Principal, templateID string, answers []AnswerInput) (*domain.Form, error) {
	t, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("Template not found")
	}
	if d := policy.CanAccessTemplate(p, t, policy.OpFill); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}
	if err := ValidateAnswers(t.Questions, answers); err != nil {
		return nil, err
	}

	f := &domain.Form{
		ID:         utils.NewID(),
		TemplateID: t.ID,
		UserID:     p.ID,
		Answers:    buildAnswers(answers),
	}
	if err := s.forms.Create(ctx, f); err != nil {
		return nil, err
	}
	return s.forms.FindByID(ctx, f.ID)
}

func (s *Service) Get(ctx context.Context, p policy.Principal, id string) (*domain.Form, error) {
	f, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := policy.CanAccessForm(p, f, policy.OpRead); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}
	return f, nil
}

// Update 整组替换 answers；更新同样跑全量校验，避免改出非法状态
func (s *Service) Update(ctx context.Context, p policy.Principal, id string, answers []AnswerInput) (*domain.Form, error) {
	f, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := policy.CanAccessForm(p, f, policy.OpEdit); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}
	var questions []domain.Question
	if f.Template != nil {
		questions = f.Template.Questions
	}
	if err := ValidateAnswers(questions, answers); err != nil {
		return nil, err
	}
	if err := s.forms.ReplaceAnswers(ctx, f.ID, buildAnswers(answers)); err != nil {
		return nil, err
	}
	return s.forms.FindByID(ctx, f.ID)
}

func (s *Service) Delete(ctx context.Context, p policy.Principal, id string) error {
	f, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if d := policy.CanAccessForm(p, f, policy.OpDelete); !d.Allowed {
		return apperr.Forbidden(d.Reason)
	}
	return s.forms.Delete(ctx, f.ID)
}

// ListMine 当前用户提交过的表单
func (s *Service) ListMine(ctx context.Context, userID string, offset, limit int) ([]domain.Form, int64, error) {
	return s.forms.ByUser(ctx, userID, offset, limit)
}

func (s *Service) load(ctx context.Context, id string) (*domain.Form, error) {
	f, err := s.forms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, apperr.NotFound("Form not found")
	}
	return f, nil
}

func buildAnswers(in []AnswerInput) []domain.Answer {
	out := make([]domain.Answer, 0, len(in))
	for _, a := range in {
		out = append(out, domain.Answer{
			ID:           utils.NewID(),
			QuestionID:   a.QuestionID,
			TextValue:    a.TextValue,
			NumericValue: a.NumericValue,
			BooleanValue: a.BooleanValue,
		})
	}
	return out
}
