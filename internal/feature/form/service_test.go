package form

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/apperr"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/policy"
)

// ---- 内存假仓库 ----

type fakeTemplateRepo struct {
	templates map[string]*domain.Template
}

func (r *fakeTemplateRepo) Create(_ context.Context, t *domain.Template) error { return nil }
func (r *fakeTemplateRepo) FindByID(_ context.Context, id string) (*domain.Template, error) {
	return r.templates[id], nil
}
func (r *fakeTemplateRepo) Save(_ context.Context, _ *domain.Template) error { return nil }
func (r *fakeTemplateRepo) ReplaceQuestions(_ context.Context, _ string, _ []domain.Question) error {
	return nil
}
func (r *fakeTemplateRepo) ReplaceTags(_ context.Context, _ string, _ []domain.Tag) error { return nil }
func (r *fakeTemplateRepo) ReplaceAllowedUsers(_ context.Context, _ string, _ []string) error {
	return nil
}
func (r *fakeTemplateRepo) DeleteCascade(_ context.Context, _ string) error { return nil }
func (r *fakeTemplateRepo) Search(_ context.Context, _, _ string, _, _ int) ([]domain.Template, int64, error) {
	return nil, 0, nil
}
func (r *fakeTemplateRepo) Popular(_ context.Context, _ int) ([]domain.Template, error) {
	return nil, nil
}
func (r *fakeTemplateRepo) Latest(_ context.Context, _ int) ([]domain.Template, error) {
	return nil, nil
}
func (r *fakeTemplateRepo) ByTag(_ context.Context, _, _ string, _, _ int) ([]domain.Template, int64, error) {
	return nil, 0, nil
}
func (r *fakeTemplateRepo) ByAuthor(_ context.Context, _ string, _, _ int) ([]domain.Template, int64, error) {
	return nil, 0, nil
}

type fakeFormRepo struct {
	forms map[string]*domain.Form
}

func (r *fakeFormRepo) Create(_ context.Context, f *domain.Form) error {
	r.forms[f.ID] = f
	return nil
}
func (r *fakeFormRepo) FindByID(_ context.Context, id string) (*domain.Form, error) {
	return r.forms[id], nil
}
func (r *fakeFormRepo) ReplaceAnswers(_ context.Context, formID string, answers []domain.Answer) error {
	if f, ok := r.forms[formID]; ok {
		f.Answers = answers
	}
	return nil
}
func (r *fakeFormRepo) Delete(_ context.Context, id string) error {
	delete(r.forms, id)
	return nil
}
func (r *fakeFormRepo) ByUser(_ context.Context, _ string, _, _ int) ([]domain.Form, int64, error) {
	return nil, 0, nil
}
func (r *fakeFormRepo) ByTemplate(_ context.Context, _ string, _, _ int) ([]domain.Form, int64, error) {
	return nil, 0, nil
}
func (r *fakeFormRepo) CountByTemplate(_ context.Context, _ string) (int64, error) { return 0, nil }
func (r *fakeFormRepo) AnswersByTemplate(_ context.Context, _ string) ([]domain.Answer, error) {
	return nil, nil
}

func newFixture() (*Service, *fakeFormRepo, *fakeTemplateRepo) {
	tr := &fakeTemplateRepo{templates: map[string]*domain.Template{}}
	fr := &fakeFormRepo{forms: map[string]*domain.Form{}}
	return NewService(fr, tr), fr, tr
}

func restrictedTemplate() *domain.Template {
	return &domain.Template{
		ID:       "tpl-1",
		AuthorID: "owner",
		Access:   domain.AccessRestricted,
		AllowedUsers: []domain.User{
			{ID: "invited"},
		},
		Questions: []domain.Question{
			{ID: "q1", Title: "Rating", Type: domain.QuestionInteger, IsRequired: true},
			{ID: "q2", Title: "Mood", Type: domain.QuestionSingleChoice,
				Options: datatypes.JSONSlice[string]{"good", "bad"}},
		},
	}
}

func TestCreateForm(t *testing.T) {
	svc, fr, tr := newFixture()
	tr.templates["tpl-1"] = restrictedTemplate()

	f, err := svc.Create(context.Background(), policy.Principal{ID: "invited", Role: domain.RoleUser},
		"tpl-1", []AnswerInput{{QuestionID: "q1", NumericValue: intp(5)}})
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "invited", f.UserID)
	assert.Equal(t, "tpl-1", f.TemplateID)
	require.Len(t, f.Answers, 1)
	assert.Len(t, fr.forms, 1)
}

func TestCreateFormDeniedByPolicy(t *testing.T) {
	svc, fr, tr := newFixture()
	tr.templates["tpl-1"] = restrictedTemplate()

	_, err := svc.Create(context.Background(), policy.Principal{ID: "stranger", Role: domain.RoleUser},
		"tpl-1", []AnswerInput{{QuestionID: "q1", NumericValue: intp(5)}})
	require.Error(t, err)
	assert.EqualError(t, err, "You do not have access to fill this template")
	assert.Empty(t, fr.forms, "拒绝时不应写入任何数据")
}

func TestCreateFormTemplateMissing(t *testing.T) {
	svc, _, _ := newFixture()
	_, err := svc.Create(context.Background(), policy.Principal{ID: "u1", Role: domain.RoleUser},
		"nope", nil)
	require.Error(t, err)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 404, ae.Code)
}

func TestCreateFormInvalidAnswersNotPersisted(t *testing.T) {
	svc, fr, tr := newFixture()
	tr.templates["tpl-1"] = restrictedTemplate()

	_, err := svc.Create(context.Background(), policy.Principal{ID: "owner", Role: domain.RoleUser},
		"tpl-1", []AnswerInput{
			{QuestionID: "q1", NumericValue: intp(5)},
			{QuestionID: "q2", TextValue: strp("meh")},
		})
	require.Error(t, err)
	assert.EqualError(t, err, `Answer "meh" is not one of the allowed options`)
	assert.Empty(t, fr.forms)
}

func TestUpdateFormRevalidates(t *testing.T) {
	svc, fr, tr := newFixture()
	tpl := restrictedTemplate()
	tr.templates["tpl-1"] = tpl
	fr.forms["f1"] = &domain.Form{
		ID: "f1", TemplateID: "tpl-1", UserID: "invited", Template: tpl,
		Answers: []domain.Answer{{ID: "a1", QuestionID: "q1", NumericValue: intp(5)}},
	}

	// 更新去掉必答题的作答，必须被校验拦下
	_, err := svc.Update(context.Background(), policy.Principal{ID: "invited", Role: domain.RoleUser},
		"f1", []AnswerInput{{QuestionID: "q2", TextValue: strp("good")}})
	require.Error(t, err)
	assert.EqualError(t, err, `Question "Rating" is required`)
	require.Len(t, fr.forms["f1"].Answers, 1, "旧作答保持不变")

	// 合法更新整组替换
	got, err := svc.Update(context.Background(), policy.Principal{ID: "invited", Role: domain.RoleUser},
		"f1", []AnswerInput{
			{QuestionID: "q1", NumericValue: intp(3)},
			{QuestionID: "q2", TextValue: strp("good")},
		})
	require.NoError(t, err)
	require.Len(t, got.Answers, 2)
}

func TestUpdateFormOnlySubmitter(t *testing.T) {
	svc, fr, tr := newFixture()
	tpl := restrictedTemplate()
	tr.templates["tpl-1"] = tpl
	fr.forms["f1"] = &domain.Form{ID: "f1", TemplateID: "tpl-1", UserID: "invited", Template: tpl}

	// 模板作者也不能改别人的提交
	_, err := svc.Update(context.Background(), policy.Principal{ID: "owner", Role: domain.RoleUser},
		"f1", nil)
	require.Error(t, err)
	assert.EqualError(t, err, "You are not authorized to edit this form")
}

func TestGetFormOwnerOfTemplateCanRead(t *testing.T) {
	svc, fr, tr := newFixture()
	tpl := restrictedTemplate()
	tr.templates["tpl-1"] = tpl
	fr.forms["f1"] = &domain.Form{ID: "f1", TemplateID: "tpl-1", UserID: "invited", Template: tpl}

	_, err := svc.Get(context.Background(), policy.Principal{ID: "owner", Role: domain.RoleUser}, "f1")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), policy.Principal{ID: "stranger", Role: domain.RoleUser}, "f1")
	require.Error(t, err)
	assert.EqualError(t, err, "You are not authorized to view this form")
}

func TestDeleteForm(t *testing.T) {
	svc, fr, tr := newFixture()
	tpl := restrictedTemplate()
	tr.templates["tpl-1"] = tpl
	fr.forms["f1"] = &domain.Form{ID: "f1", TemplateID: "tpl-1", UserID: "invited", Template: tpl}

	err := svc.Delete(context.Background(), policy.Principal{ID: "stranger", Role: domain.RoleUser}, "f1")
	require.Error(t, err)

	// ADMIN 放行
	err = svc.Delete(context.Background(), policy.Principal{ID: "stranger", Role: domain.RoleAdmin}, "f1")
	require.NoError(t, err)
	assert.Empty(t, fr.forms)
}
