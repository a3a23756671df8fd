// Package storage 模板图片的外部对象存储（Cloudinary）
package storage

import (
	"context"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/core/config"
)

type Blob struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cfg config.Cloudinary) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, err
	}
	return &Cloudinary{cld: cld, folder: cfg.Folder}, nil
}

func (s *Cloudinary) Upload(ctx context.Context, r io.Reader) (*Blob, error) {
	res, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: s.folder})
	if err != nil {
		return nil, err
	}
	return &Blob{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (s *Cloudinary) Delete(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}

// PublicIDFromURL 从存储 URL 推回 publicId（<folder>/<文件名去扩展名>）
func (s *Cloudinary) PublicIDFromURL(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	name := parts[len(parts)-1]
	if dot := strings.LastIndexByte(name, '.'); dot > 0 {
		name = name[:dot]
	}
	if name == "" {
		return ""
	}
	return s.folder + "/" + name
}
