package server

import (
	"errors"

	"github.com/kataras/iris/v12"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/service"
)

// ok 成功响应：{success:true, ...payload}
func ok(ctx iris.Context, payload iris.Map) {
	body := iris.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	_ = ctx.JSON(body)
}

// created 201 成功响应
func created(ctx iris.Context, payload iris.Map) {
	ctx.StatusCode(iris.StatusCreated)
	ok(ctx, payload)
}

// fail 失败响应：{success:false, message}
func fail(ctx iris.Context, status int, message string) {
	ctx.StopWithJSON(status, iris.Map{
		"success": false,
		"message": message,
	})
}

// failErr 把业务错误映射到状态码与用户可读文案。
// 未识别的错误一律 500，原始错误信息放在 error 字段。
func failErr(ctx iris.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		fail(ctx, iris.StatusNotFound, "Không tìm thấy dữ liệu")
	case errors.Is(err, service.ErrForbidden):
		fail(ctx, iris.StatusForbidden, "Bạn không có quyền thực hiện thao tác này")
	case errors.Is(err, service.ErrUnavailable):
		fail(ctx, iris.StatusBadRequest, "Sản phẩm hiện không có sẵn")
	case errors.Is(err, service.ErrInsufficientStock):
		fail(ctx, iris.StatusBadRequest, "Số lượng vượt quá tồn kho")
	case errors.Is(err, service.ErrInvalidState):
		fail(ctx, iris.StatusBadRequest, "Không thể thực hiện ở trạng thái này")
	case errors.Is(err, service.ErrRecallExpired):
		fail(ctx, iris.StatusBadRequest, "Chỉ có thể thu hồi tin nhắn trong vòng 5 phút")
	case errors.Is(err, service.ErrAlreadyReviewed):
		fail(ctx, iris.StatusBadRequest, "Bạn đã đánh giá sản phẩm này rồi")
	case errors.Is(err, service.ErrBadInput):
		fail(ctx, iris.StatusBadRequest, "Dữ liệu không hợp lệ: "+err.Error())
	default:
		ctx.StopWithJSON(iris.StatusInternalServerError, iris.Map{
			"success": false,
			"message": "Lỗi server",
			"error":   err.Error(),
		})
	}
}
