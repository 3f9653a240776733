package service

import (
	"errors"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/product"
)

// 业务错误按类别收敛，handler 层统一映射到 HTTP 状态码：
// NotFound→404，Forbidden→403，其余业务约束→400，未识别→500。
var (
	ErrNotFound          = errors.New("entity not found")
	ErrForbidden         = errors.New("operation not allowed for this user")
	ErrInvalidState      = errors.New("operation not legal for current status")
	ErrUnavailable       = errors.New("product not available")
	ErrInsufficientStock = product.ErrInsufficientStock
	ErrRecallExpired     = errors.New("recall window expired")
	ErrAlreadyReviewed   = errors.New("product already reviewed by this user")
	ErrBadInput          = errors.New("invalid input")
)
