package server

import (
	"github.com/kataras/iris/v12"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/service"
)

type updateProfileRequest struct {
	Name            *string  `json:"name"`
	Phone           *string  `json:"phone"`
	Building        *string  `json:"building"`
	Floor           *string  `json:"floor"`
	ApartmentNumber *string  `json:"apartmentNumber"`
	Longitude       *float64 `json:"longitude"`
	Latitude        *float64 `json:"latitude"`
}

func (a *api) registerUserRoutes(p iris.Party) {
	users := p.Party("/users")

	users.Get("/profile", func(ctx iris.Context) {
		ok(ctx, iris.Map{"user": currentUser(ctx)})
	})

	users.Put("/profile", func(ctx iris.Context) {
		var req updateProfileRequest
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, iris.StatusBadRequest, "Dữ liệu không hợp lệ")
			return
		}
		u, err := a.users.UpdateProfile(ctx.Request().Context(), currentUser(ctx).ID, service.UpdateProfileInput{
			Name:            req.Name,
			Phone:           req.Phone,
			Building:        req.Building,
			Floor:           req.Floor,
			ApartmentNumber: req.ApartmentNumber,
			Longitude:       req.Longitude,
			Latitude:        req.Latitude,
		})
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"message": "Cập nhật thông tin thành công", "user": u})
	})

	// 附近邻居，坐标缺省取自己档案里的位置
	users.Get("/nearby", func(ctx iris.Context) {
		me := currentUser(ctx)
		lng, _ := ctx.URLParamFloat64("longitude")
		lat, _ := ctx.URLParamFloat64("latitude")
		if !ctx.URLParamExists("longitude") || !ctx.URLParamExists("latitude") {
			lng, lat = me.Longitude, me.Latitude
		}
		maxDistance, _ := ctx.URLParamFloat64("maxDistance")
		list, err := a.users.ListNearby(ctx.Request().Context(), me.ID, lng, lat, maxDistance)
		if err != nil {
			failErr(ctx, err)
			return
		}
		publics := make([]interface{}, 0, len(list))
		for _, u := range list {
			publics = append(publics, u.PublicView())
		}
		ok(ctx, iris.Map{"users": publics})
	})

	// 上传实名材料等待后台审核
	users.Post("/verify", func(ctx iris.Context) {
		path, err := a.saveUpload(ctx, "document")
		if err != nil {
			fail(ctx, iris.StatusBadRequest, "Tệp không hợp lệ")
			return
		}
		u, err := a.users.SubmitVerification(ctx.Request().Context(), currentUser(ctx).ID, path)
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"message": "Đã gửi hồ sơ xác thực", "user": u})
	})

	// 他人公开档案
	users.Get("/{userId:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("userId")
		u, err := a.users.GetByID(ctx.Request().Context(), id)
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"user": u.PublicView()})
	})
}
