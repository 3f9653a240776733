package server

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
)

var errBadUpload = errors.New("bad upload")

// allowedUploadExt 只收图片和 PDF（实名材料）
var allowedUploadExt = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".pdf":  {},
}

// saveUpload 把表单文件落到上传目录，文件名换成 uuid 防覆盖，
// 返回可通过 /uploads 访问的相对路径
func (a *api) saveUpload(ctx iris.Context, field string) (string, error) {
	_, header, err := ctx.FormFile(field)
	if err != nil {
		return "", errBadUpload
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedUploadExt[ext]; !ok {
		return "", errBadUpload
	}
	name := uuid.New().String() + ext
	if _, err := ctx.SaveFormFile(header, filepath.Join(a.cfg.Upload.Dir, name)); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

func (a *api) registerUploadRoutes(p iris.Party) {
	// 商品图等通用上传，返回可直接引用的 URL
	p.Post("/upload", func(ctx iris.Context) {
		path, err := a.saveUpload(ctx, "image")
		if err != nil {
			fail(ctx, iris.StatusBadRequest, "Tệp không hợp lệ")
			return
		}
		ok(ctx, iris.Map{"url": path})
	})
}
