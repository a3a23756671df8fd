package router

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/apperr"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/storage"
	httpez "github.com/mohamim360/FormBuilderApp-Backend/internal/transport/http/ez"
)

// mountUploadActions 模板封面图上传，未配置 Cloudinary 时不挂载
func mountUploadActions(authed *gin.RouterGroup, d Deps) {
	if d.Uploads == nil {
		return
	}
	ez := httpez.New(authed, d.Log)

	httpez.POSTFILES(ez, "/uploads/images", "images",
		func(c *gin.Context, files []*multipart.FileHeader) (any, error) {
			out := make([]*storage.Blob, 0, len(files))
			for _, fh := range files {
				f, err := fh.Open()
				if err != nil {
					return nil, apperr.BadRequest("cannot read uploaded file: " + err.Error())
				}
				blob, err := d.Uploads.Upload(c.Request.Context(), f)
				_ = f.Close()
				if err != nil {
					return nil, apperr.Internal("image upload failed", err)
				}
				out = append(out, blob)
			}
			return out, nil
		})
}
