package template

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/apperr"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/policy"
)

// ---- 内存假实现 ----

type memTemplateRepo struct {
	byID map[string]*domain.Template

	replacedQuestions []domain.Question
	replacedTags      []domain.Tag
	replacedAllowed   []string
	deleted           []string
}

func (r *memTemplateRepo) Create(_ context.Context, t *domain.Template) error {
	r.byID[t.ID] = t
	return nil
}
func (r *memTemplateRepo) FindByID(_ context.Context, id string) (*domain.Template, error) {
	return r.byID[id], nil
}
func (r *memTemplateRepo) Save(_ context.Context, t *domain.Template) error {
	r.byID[t.ID] = t
	return nil
}
func (r *memTemplateRepo) ReplaceQuestions(_ context.Context, _ string, qs []domain.Question) error {
	r.replacedQuestions = qs
	return nil
}
func (r *memTemplateRepo) ReplaceTags(_ context.Context, _ string, tags []domain.Tag) error {
	r.replacedTags = tags
	return nil
}
func (r *memTemplateRepo) ReplaceAllowedUsers(_ context.Context, _ string, ids []string) error {
	r.replacedAllowed = ids
	return nil
}
func (r *memTemplateRepo) DeleteCascade(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	delete(r.byID, id)
	return nil
}
func (r *memTemplateRepo) Search(_ context.Context, _, _ string, _, _ int) ([]domain.Template, int64, error) {
	return nil, 0, nil
}
func (r *memTemplateRepo) Popular(_ context.Context, _ int) ([]domain.Template, error) {
	return nil, nil
}
func (r *memTemplateRepo) Latest(_ context.Context, _ int) ([]domain.Template, error) {
	return nil, nil
}
func (r *memTemplateRepo) ByTag(_ context.Context, _, _ string, _, _ int) ([]domain.Template, int64, error) {
	return nil, 0, nil
}
func (r *memTemplateRepo) ByAuthor(_ context.Context, _ string, _, _ int) ([]domain.Template, int64, error) {
	return nil, 0, nil
}

type memTagRepo struct{}

func (memTagRepo) FindOrCreate(_ context.Context, names []string) ([]domain.Tag, error) {
	tags := make([]domain.Tag, 0, len(names))
	for i, n := range names {
		tags = append(tags, domain.Tag{ID: string(rune('a' + i)), Name: n})
	}
	return tags, nil
}
func (memTagRepo) Popular(_ context.Context, _ int) ([]domain.TagCount, error) { return nil, nil }

type memFormRepo struct{ domain.FormRepository }

func (memFormRepo) ByTemplate(_ context.Context, _ string, _, _ int) ([]domain.Form, int64, error) {
	return []domain.Form{{ID: "f1"}}, 1, nil
}

type memSocialRepo struct {
	likes map[string]bool // userID+templateID
}

func (r *memSocialRepo) AddComment(_ context.Context, _ *domain.Comment) error { return nil }
func (r *memSocialRepo) Comments(_ context.Context, _ string, _, _ int) ([]domain.Comment, int64, error) {
	return nil, 0, nil
}
func (r *memSocialRepo) FindLike(_ context.Context, userID, templateID string) (*domain.Like, error) {
	if r.likes[userID+templateID] {
		return &domain.Like{UserID: userID, TemplateID: templateID}, nil
	}
	return nil, nil
}
func (r *memSocialRepo) Like(_ context.Context, userID, templateID string) error {
	r.likes[userID+templateID] = true
	return nil
}
func (r *memSocialRepo) Unlike(_ context.Context, userID, templateID string) error {
	delete(r.likes, userID+templateID)
	return nil
}
func (r *memSocialRepo) CountLikes(_ context.Context, _ string) (int64, error) { return 0, nil }

type memBlobStore struct{ deleted []string }

func (b *memBlobStore) Delete(_ context.Context, publicID string) error {
	b.deleted = append(b.deleted, publicID)
	return nil
}
func (b *memBlobStore) PublicIDFromURL(url string) string {
	if url == "" {
		return ""
	}
	return "pid:" + url
}

func newFixture() (*Service, *memTemplateRepo, *memSocialRepo, *memBlobStore) {
	tr := &memTemplateRepo{byID: map[string]*domain.Template{}}
	sr := &memSocialRepo{likes: map[string]bool{}}
	bs := &memBlobStore{}
	svc := NewService(tr, memTagRepo{}, memFormRepo{}, sr, bs, nil, zap.NewNop())
	return svc, tr, sr, bs
}

func strp(s string) *string { return &s }

func TestCreateTemplate(t *testing.T) {
	svc, tr, _, _ := newFixture()
	got, err := svc.Create(context.Background(), "author", CreateInput{
		Title:    "Survey",
		IsPublic: true,
		Questions: []QuestionInput{
			{Title: "Q A", Type: domain.QuestionSingleLineText},
			{Title: "Q B", Type: domain.QuestionInteger},
		},
		Tags:           []string{"hr", "2026"},
		AllowedUserIDs: []string{"u2"},
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "author", got.AuthorID)
	assert.Equal(t, domain.AccessPublic, got.Access, "缺省访问级别为 PUBLIC")
	require.Len(t, got.Questions, 2)
	assert.Equal(t, 0, got.Questions[0].Order)
	assert.Equal(t, 1, got.Questions[1].Order)
	assert.Len(t, tr.byID, 1)
}

func TestCreateTemplateInvalidQuestionType(t *testing.T) {
	svc, tr, _, _ := newFixture()
	_, err := svc.Create(context.Background(), "author", CreateInput{
		Title:     "Bad",
		Questions: []QuestionInput{{Title: "Q", Type: "DROPDOWN"}},
	})
	require.Error(t, err)
	assert.EqualError(t, err, "Invalid question type")
	assert.Empty(t, tr.byID)
}

func TestUpdateTemplateOwnerOnly(t *testing.T) {
	svc, tr, _, _ := newFixture()
	tr.byID["t1"] = &domain.Template{ID: "t1", AuthorID: "owner"}

	_, err := svc.Update(context.Background(), policy.Principal{ID: "other", Role: domain.RoleUser},
		"t1", UpdateInput{Title: strp("Hacked")})
	require.Error(t, err)
	assert.EqualError(t, err, "You are not authorized to update this template")
}

func TestUpdateTemplateReplacesRelations(t *testing.T) {
	svc, tr, _, bs := newFixture()
	tr.byID["t1"] = &domain.Template{ID: "t1", AuthorID: "owner", ImageURL: "http://img/old.png"}

	qs := []QuestionInput{{Title: "New Q", Type: domain.QuestionCheckbox}}
	tags := []string{"fresh"}
	allowed := []string{"u9"}
	got, err := svc.Update(context.Background(), policy.Principal{ID: "owner", Role: domain.RoleUser},
		"t1", UpdateInput{
			Title:          strp("Renamed"),
			ImageURL:       strp("http://img/new.png"),
			Questions:      &qs,
			Tags:           &tags,
			AllowedUserIDs: &allowed,
		})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	require.Len(t, tr.replacedQuestions, 1)
	assert.Equal(t, 0, tr.replacedQuestions[0].Order)
	require.Len(t, tr.replacedTags, 1)
	assert.Equal(t, []string{"u9"}, tr.replacedAllowed)
	// 换图时释放旧图
	assert.Equal(t, []string{"pid:http://img/old.png"}, bs.deleted)
}

func TestDeleteTemplate(t *testing.T) {
	svc, tr, _, bs := newFixture()
	tr.byID["t1"] = &domain.Template{ID: "t1", AuthorID: "owner", ImageURL: "http://img/x.png"}

	err := svc.Delete(context.Background(), policy.Principal{ID: "other", Role: domain.RoleUser}, "t1")
	require.Error(t, err)
	assert.EqualError(t, err, "You are not authorized to delete this template")

	err = svc.Delete(context.Background(), policy.Principal{ID: "owner", Role: domain.RoleUser}, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, tr.deleted)
	assert.Equal(t, []string{"pid:http://img/x.png"}, bs.deleted)
}

func TestGetTemplateRestricted(t *testing.T) {
	svc, tr, _, _ := newFixture()
	tr.byID["t1"] = &domain.Template{
		ID: "t1", AuthorID: "owner", Access: domain.AccessRestricted,
		AllowedUsers: []domain.User{{ID: "friend"}},
	}

	_, err := svc.Get(context.Background(), policy.Principal{ID: "friend", Role: domain.RoleUser}, "t1")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), policy.Principal{}, "t1")
	require.Error(t, err)
	assert.EqualError(t, err, "You do not have access to this template")
}

func TestLikeTwiceConflicts(t *testing.T) {
	svc, tr, _, _ := newFixture()
	tr.byID["t1"] = &domain.Template{ID: "t1", AuthorID: "owner", IsPublic: true}

	require.NoError(t, svc.Like(context.Background(), "u1", "t1"))

	err := svc.Like(context.Background(), "u1", "t1")
	require.Error(t, err)
	assert.EqualError(t, err, "You already liked this template")
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 400, ae.Code)
}

func TestUnlikeIdempotent(t *testing.T) {
	svc, tr, sr, _ := newFixture()
	tr.byID["t1"] = &domain.Template{ID: "t1", AuthorID: "owner", IsPublic: true}

	require.NoError(t, svc.Like(context.Background(), "u1", "t1"))
	require.NoError(t, svc.Unlike(context.Background(), "u1", "t1"))
	// 再取消一次也不报错
	require.NoError(t, svc.Unlike(context.Background(), "u1", "t1"))
	assert.Empty(t, sr.likes)

	liked, err := svc.HasLiked(context.Background(), "u1", "t1")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestTemplateFormsAuthorOnly(t *testing.T) {
	svc, tr, _, _ := newFixture()
	tr.byID["t1"] = &domain.Template{ID: "t1", AuthorID: "owner", IsPublic: true}

	_, _, err := svc.Forms(context.Background(), policy.Principal{ID: "other", Role: domain.RoleUser}, "t1", 0, 10)
	require.Error(t, err)
	assert.EqualError(t, err, "You are not authorized to view these forms")

	items, total, err := svc.Forms(context.Background(), policy.Principal{ID: "owner", Role: domain.RoleUser}, "t1", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
}
