// Package stats 模板作答的聚合统计
package stats

import (
	"context"
	"sort"
	"strconv"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/apperr"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/policy"
)

// NumericStats 整数题的汇总，无有效作答时 Min/Max/Average 为 null
type NumericStats struct {
	Count   int64    `json:"count"`
	Min     *int     `json:"min"`
	Max     *int     `json:"max"`
	Average *float64 `json:"average"`
}

// ValueCount 频次表的一行
type ValueCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

type QuestionStats struct {
	QuestionID    string              `json:"questionId"`
	QuestionTitle string              `json:"questionTitle"`
	Type          domain.QuestionType `json:"type"`

	// 二选一：整数题给 Stats，其余题型给 Frequencies
	Stats       *NumericStats `json:"stats,omitempty"`
	Frequencies []ValueCount  `json:"frequencies,omitempty"`
}

type TemplateStats struct {
	TemplateID string          `json:"templateId"`
	FormsCount int64           `json:"formsCount"`
	LikesCount int64           `json:"likesCount"`
	Questions  []QuestionStats `json:"questionsStats"`
}

type Service struct {
	templates domain.TemplateRepository
	forms     domain.FormRepository
	social    domain.SocialRepository
}

func NewService(templates domain.TemplateRepository, forms domain.FormRepository, social domain.SocialRepository) *Service {
	return &Service{templates: templates, forms: forms, social: social}
}

// ForTemplate 模板维度的聚合，仅作者/ADMIN 可看
func (s *Service) ForTemplate(ctx context.Context, p policy.Principal, templateID string) (*TemplateStats, error) {
	t, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("Template not found")
	}
	if d := policy.CanAccessTemplate(p, t, policy.OpViewStats); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}

	formsCount, err := s.forms.CountByTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	likesCount, err := s.social.CountLikes(ctx, templateID)
	if err != nil {
		return nil, err
	}
	answers, err := s.forms.AnswersByTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[string][]domain.Answer, len(t.Questions))
	for _, a := range answers {
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}

	out := &TemplateStats{
		TemplateID: t.ID,
		FormsCount: formsCount,
		LikesCount: likesCount,
		Questions:  make([]QuestionStats, 0, len(t.Questions)),
	}
	// 题目按 order 输出，跳过的题型分支意味着新题型没接统计
	for _, q := range t.Questions {
		qs := QuestionStats{QuestionID: q.ID, QuestionTitle: q.Title, Type: q.Type}
		group := byQuestion[q.ID]
		switch q.Type {
		case domain.QuestionInteger:
			qs.Stats = numericStats(group)
		case domain.QuestionCheckbox:
			qs.Frequencies = booleanFrequencies(group)
		case domain.QuestionSingleLineText, domain.QuestionMultiLineText, domain.QuestionSingleChoice:
			qs.Frequencies = textFrequencies(group)
		}
		out.Questions = append(out.Questions, qs)
	}
	return out, nil
}

func numericStats(answers []domain.Answer) *NumericStats {
	st := &NumericStats{}
	var sum int64
	for _, a := range answers {
		if a.NumericValue == nil {
			continue
		}
		v := *a.NumericValue
		if st.Count == 0 {
			st.Min, st.Max = intp(v), intp(v)
		} else {
			if v < *st.Min {
				*st.Min = v
			}
			if v > *st.Max {
				*st.Max = v
			}
		}
		sum += int64(v)
		st.Count++
	}
	if st.Count > 0 {
		avg := float64(sum) / float64(st.Count)
		st.Average = &avg
	}
	return st
}

func booleanFrequencies(answers []domain.Answer) []ValueCount {
	freq := map[string]int64{}
	for _, a := range answers {
		if a.BooleanValue == nil {
			continue
		}
		freq[strconv.FormatBool(*a.BooleanValue)]++
	}
	return sortedFrequencies(freq)
}

func textFrequencies(answers []domain.Answer) []ValueCount {
	freq := map[string]int64{}
	for _, a := range answers {
		if a.TextValue == nil {
			continue
		}
		freq[*a.TextValue]++
	}
	return sortedFrequencies(freq)
}

// sortedFrequencies 频次降序，同频按值字典序，保证输出稳定
func sortedFrequencies(freq map[string]int64) []ValueCount {
	out := make([]ValueCount, 0, len(freq))
	for v, n := range freq {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

func intp(v int) *int { return &v }
