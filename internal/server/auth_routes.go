package server

import (
	"strings"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/service"
)

type registerRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Password        string  `json:"password"`
	Building        string  `json:"building"`
	Floor           string  `json:"floor"`
	ApartmentNumber string  `json:"apartmentNumber"`
	Longitude       float64 `json:"longitude"`
	Latitude        float64 `json:"latitude"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *api) registerAuthRoutes(p iris.Party) {
	auth := p.Party("/auth")

	auth.Post("/register", func(ctx iris.Context) {
		var req registerRequest
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, iris.StatusBadRequest, "Dữ liệu không hợp lệ")
			return
		}
		u, err := a.users.Register(ctx.Request().Context(), service.RegisterInput{
			Name:            req.Name,
			Email:           strings.ToLower(strings.TrimSpace(req.Email)),
			Phone:           req.Phone,
			Password:        req.Password,
			Building:        req.Building,
			Floor:           req.Floor,
			ApartmentNumber: req.ApartmentNumber,
			Longitude:       req.Longitude,
			Latitude:        req.Latitude,
		})
		if err != nil {
			// 邮箱唯一索引冲突走通用 500 会暴露细节，这里单独兜住
			if strings.Contains(err.Error(), "Duplicate entry") {
				fail(ctx, iris.StatusBadRequest, "Email đã được đăng ký")
				return
			}
			failErr(ctx, err)
			return
		}
		zap.L().Info("user registered", zap.Int64("user_id", u.ID), zap.String("email", u.Email))
		created(ctx, iris.Map{"message": "Đăng ký thành công", "user": u.PublicView()})
	})

	auth.Post("/login", func(ctx iris.Context) {
		var req loginRequest
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, iris.StatusBadRequest, "Dữ liệu không hợp lệ")
			return
		}
		token, u, err := a.users.Login(ctx.Request().Context(),
			strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
		if err != nil {
			// 不区分「账号不存在」与「密码错误」
			fail(ctx, iris.StatusBadRequest, "Email hoặc mật khẩu không đúng")
			return
		}
		ok(ctx, iris.Map{
			"message": "Đăng nhập thành công",
			"token":   token,
			"user":    u.PublicView(),
		})
	})
}
