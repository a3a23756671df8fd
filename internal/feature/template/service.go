// Package template 模板生命周期、发现列表与社交互动
package template

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/apperr"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/core/cache"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/policy"
	"github.com/mohamim360/FormBuilderApp-Backend/pkg/utils"
)

// 列表缓存 key，模板或点赞/评论变动时整体失效
const (
	cacheKeyPopular     = "templates:popular"
	cacheKeyLatest      = "templates:latest"
	cacheKeyPopularTags = "tags:popular"
	listCacheTTL        = 60 * time.Second
)

// BlobStore 模板封面图所在的对象存储，删除旧图时用
type BlobStore interface {
	Delete(ctx context.Context, publicID string) error
	PublicIDFromURL(url string) string
}

type Service struct {
	templates domain.TemplateRepository
	tags      domain.TagRepository
	forms     domain.FormRepository
	social    domain.SocialRepository

	blobs BlobStore    // 可为 nil（未配置对象存储）
	cache *cache.Cache // 可为 nil（未配置 Redis）
	log   *zap.Logger
}

func NewService(
	templates domain.TemplateRepository,
	tags domain.TagRepository,
	forms domain.FormRepository,
	social domain.SocialRepository,
	blobs BlobStore,
	c *cache.Cache,
	log *zap.Logger,
) *Service {
	return &Service{
		templates: templates, tags: tags, forms: forms, social: social,
		blobs: blobs, cache: c, log: log,
	}
}

type QuestionInput struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	Type        domain.QuestionType `json:"type" binding:"required"`
	IsRequired  bool                `json:"isRequired"`
	ShowInTable bool                `json:"showInTable"`
	Options     []string            `json:"options"`
}

type CreateInput struct {
	Title          string                `json:"title" binding:"required"`
	Description    string                `json:"description"`
	Topic          string                `json:"topic"`
	ImageURL       string                `json:"imageUrl"`
	IsPublic       bool                  `json:"isPublic"`
	Access         domain.TemplateAccess `json:"access"`
	Questions      []QuestionInput       `json:"questions"`
	Tags           []string              `json:"tags"`
	AllowedUserIDs []string              `json:"allowedUserIds"`
}

// UpdateInput 指针字段缺省表示不改；Questions/Tags/AllowedUserIDs 一旦出现就整组替换
type UpdateInput struct {
	Title          *string                `json:"title"`
	Description    *string                `json:"description"`
	Topic          *string                `json:"topic"`
	ImageURL       *string                `json:"imageUrl"`
	IsPublic       *bool                  `json:"isPublic"`
	Access         *domain.TemplateAccess `json:"access"`
	Questions      *[]QuestionInput       `json:"questions"`
	Tags           *[]string              `json:"tags"`
	AllowedUserIDs *[]string              `json:"allowedUserIds"`
}

func (s *Service) Create(ctx context.Context, authorID string, in CreateInput) (*domain.Template, error) {
	if err := validateQuestions(in.Questions); err != nil {
		return nil, err
	}
	access := in.Access
	if access == "" {
		access = domain.AccessPublic
	}
	if !access.Valid() {
		return nil, apperr.BadRequest("Invalid access level")
	}

	tags, err := s.tags.FindOrCreate(ctx, in.Tags)
	if err != nil {
		return nil, err
	}

	t := &domain.Template{
		ID:          utils.NewID(),
		AuthorID:    authorID,
		Title:       in.Title,
		Description: in.Description,
		Topic:       in.Topic,
		ImageURL:    in.ImageURL,
		IsPublic:    in.IsPublic,
		Access:      access,
		Questions:   buildQuestions(in.Questions),
		Tags:        tags,
		AllowedUsers: func() []domain.User {
			us := make([]domain.User, 0, len(in.AllowedUserIDs))
			for _, id := range in.AllowedUserIDs {
				us = append(us, domain.User{ID: id})
			}
			return us
		}(),
	}
	if err := s.templates.Create(ctx, t); err != nil {
		return nil, err
	}
	s.invalidateLists(ctx)
	return s.templates.FindByID(ctx, t.ID)
}

func (s *Service) Get(ctx context.Context, p policy.Principal, id string) (*domain.Template, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := policy.CanAccessTemplate(p, t, policy.OpRead); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}
	return t, nil
}

func (s *Service) Update(ctx context.Context, p policy.Principal, id string, in UpdateInput) (*domain.Template, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := policy.CanAccessTemplate(p, t, policy.OpEdit); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}

	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Topic != nil {
		t.Topic = *in.Topic
	}
	if in.IsPublic != nil {
		t.IsPublic = *in.IsPublic
	}
	if in.Access != nil {
		if !in.Access.Valid() {
			return nil, apperr.BadRequest("Invalid access level")
		}
		t.Access = *in.Access
	}
	if in.ImageURL != nil && *in.ImageURL != t.ImageURL {
		s.releaseImage(ctx, t.ImageURL)
		t.ImageURL = *in.ImageURL
	}
	if err := s.templates.Save(ctx, t); err != nil {
		return nil, err
	}

	if in.Questions != nil {
		if err := validateQuestions(*in.Questions); err != nil {
			return nil, err
		}
		if err := s.templates.ReplaceQuestions(ctx, t.ID, buildQuestions(*in.Questions)); err != nil {
			return nil, err
		}
	}
	if in.Tags != nil {
		tags, err := s.tags.FindOrCreate(ctx, *in.Tags)
		if err != nil {
			return nil, err
		}
		if err := s.templates.ReplaceTags(ctx, t.ID, tags); err != nil {
			return nil, err
		}
	}
	if in.AllowedUserIDs != nil {
		if err := s.templates.ReplaceAllowedUsers(ctx, t.ID, *in.AllowedUserIDs); err != nil {
			return nil, err
		}
	}

	s.invalidateLists(ctx)
	return s.templates.FindByID(ctx, t.ID)
}

func (s *Service) Delete(ctx context.Context, p policy.Principal, id string) error {
	t, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if d := policy.CanAccessTemplate(p, t, policy.OpDelete); !d.Allowed {
		return apperr.Forbidden(d.Reason)
	}
	s.releaseImage(ctx, t.ImageURL)
	if err := s.templates.DeleteCascade(ctx, t.ID); err != nil {
		return err
	}
	s.invalidateLists(ctx)
	return nil
}

// ---- 发现 ----

func (s *Service) Search(ctx context.Context, viewerID, q string, offset, limit int) ([]domain.Template, int64, error) {
	return s.templates.Search(ctx, q, viewerID, offset, limit)
}

func (s *Service) Popular(ctx context.Context, limit int) ([]domain.Template, error) {
	if s.cache == nil {
		return s.templates.Popular(ctx, limit)
	}
	key := fmt.Sprintf("%s:%d", cacheKeyPopular, limit)
	return cache.GetOrLoadJSON(s.cache, ctx, key, listCacheTTL, func(ctx context.Context) ([]domain.Template, error) {
		return s.templates.Popular(ctx, limit)
	})
}

func (s *Service) Latest(ctx context.Context, limit int) ([]domain.Template, error) {
	if s.cache == nil {
		return s.templates.Latest(ctx, limit)
	}
	key := fmt.Sprintf("%s:%d", cacheKeyLatest, limit)
	return cache.GetOrLoadJSON(s.cache, ctx, key, listCacheTTL, func(ctx context.Context) ([]domain.Template, error) {
		return s.templates.Latest(ctx, limit)
	})
}

func (s *Service) ByTag(ctx context.Context, viewerID, tag string, offset, limit int) ([]domain.Template, int64, error) {
	return s.templates.ByTag(ctx, tag, viewerID, offset, limit)
}

func (s *Service) Mine(ctx context.Context, authorID string, offset, limit int) ([]domain.Template, int64, error) {
	return s.templates.ByAuthor(ctx, authorID, offset, limit)
}

func (s *Service) PopularTags(ctx context.Context, limit int) ([]domain.TagCount, error) {
	if s.cache == nil {
		return s.tags.Popular(ctx, limit)
	}
	key := fmt.Sprintf("%s:%d", cacheKeyPopularTags, limit)
	return cache.GetOrLoadJSON(s.cache, ctx, key, listCacheTTL, func(ctx context.Context) ([]domain.TagCount, error) {
		return s.tags.Popular(ctx, limit)
	})
}

// Forms 列出某模板收到的提交，仅作者/ADMIN
func (s *Service) Forms(ctx context.Context, p policy.Principal, templateID string, offset, limit int) ([]domain.Form, int64, error) {
	t, err := s.load(ctx, templateID)
	if err != nil {
		return nil, 0, err
	}
	if d := policy.CanAccessTemplate(p, t, policy.OpViewSubmissions); !d.Allowed {
		return nil, 0, apperr.Forbidden(d.Reason)
	}
	return s.forms.ByTemplate(ctx, templateID, offset, limit)
}

// ---- 社交 ----

func (s *Service) AddComment(ctx context.Context, userID, templateID, content string) (*domain.Comment, error) {
	if _, err := s.load(ctx, templateID); err != nil {
		return nil, err
	}
	c := &domain.Comment{
		ID:         utils.NewID(),
		TemplateID: templateID,
		UserID:     userID,
		Content:    content,
	}
	if err := s.social.AddComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Comments(ctx context.Context, templateID string, offset, limit int) ([]domain.Comment, int64, error) {
	return s.social.Comments(ctx, templateID, offset, limit)
}

func (s *Service) Like(ctx context.Context, userID, templateID string) error {
	if _, err := s.load(ctx, templateID); err != nil {
		return err
	}
	existing, err := s.social.FindLike(ctx, userID, templateID)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.Conflict("You already liked this template")
	}
	if err := s.social.Like(ctx, userID, templateID); err != nil {
		return err
	}
	s.invalidateLists(ctx)
	return nil
}

func (s *Service) Unlike(ctx context.Context, userID, templateID string) error {
	// 未点过赞时静默成功
	if err := s.social.Unlike(ctx, userID, templateID); err != nil {
		return err
	}
	s.invalidateLists(ctx)
	return nil
}

func (s *Service) HasLiked(ctx context.Context, userID, templateID string) (bool, error) {
	l, err := s.social.FindLike(ctx, userID, templateID)
	if err != nil {
		return false, err
	}
	return l != nil, nil
}

// ---- 内部 ----

func (s *Service) load(ctx context.Context, id string) (*domain.Template, error) {
	t, err := s.templates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("Template not found")
	}
	return t, nil
}

// releaseImage 尽力删除旧封面图，失败只记日志不阻断主流程
func (s *Service) releaseImage(ctx context.Context, url string) {
	if s.blobs == nil || url == "" {
		return
	}
	pid := s.blobs.PublicIDFromURL(url)
	if pid == "" {
		return
	}
	if err := s.blobs.Delete(ctx, pid); err != nil && s.log != nil {
		s.log.Warn("delete template image failed", zap.String("publicId", pid), zap.Error(err))
	}
}

func (s *Service) invalidateLists(ctx context.Context) {
	if s.cache == nil {
		return
	}
	// limit 常用档位，逐个清
	keys := make([]string, 0, 12)
	for _, n := range []int{5, 6, 10, 20} {
		keys = append(keys,
			fmt.Sprintf("%s:%d", cacheKeyPopular, n),
			fmt.Sprintf("%s:%d", cacheKeyLatest, n),
			fmt.Sprintf("%s:%d", cacheKeyPopularTags, n),
		)
	}
	s.cache.Invalidate(ctx, keys...)
}

func validateQuestions(qs []QuestionInput) error {
	for _, q := range qs {
		if !q.Type.Valid() {
			return apperr.BadRequest("Invalid question type")
		}
	}
	return nil
}

// buildQuestions order 按数组位置 0 起连续编号
func buildQuestions(in []QuestionInput) []domain.Question {
	qs := make([]domain.Question, 0, len(in))
	for i, q := range in {
		qs = append(qs, domain.Question{
			ID:          utils.NewID(),
			Title:       q.Title,
			Description: q.Description,
			Type:        q.Type,
			IsRequired:  q.IsRequired,
			ShowInTable: q.ShowInTable,
			Options:     q.Options,
			Order:       i,
		})
	}
	return qs
}
