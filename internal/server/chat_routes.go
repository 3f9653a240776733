package server

import (
	"github.com/kataras/iris/v12"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/middleware"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/relay"
)

type sendMessageRequest struct {
	ReceiverID       int64  `json:"receiverId"`
	RoomID           string `json:"roomId"`
	Content          string `json:"content"`
	RelatedProductID *int64 `json:"relatedProductId"`
}

func (a *api) registerChatRoutes(p iris.Party) {
	messages := p.Party("/messages")

	// 会话列表：每个房间最新一条 + 未读数
	messages.Get("/conversations/list", func(ctx iris.Context) {
		list, err := a.chats.Conversations(ctx.Request().Context(), currentUser(ctx).ID)
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"conversations": list})
	})

	messages.Post("/send", middleware.MessageRateLimit(), func(ctx iris.Context) {
		var req sendMessageRequest
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, iris.StatusBadRequest, "Dữ liệu không hợp lệ")
			return
		}
		view, err := a.chats.Send(ctx.Request().Context(),
			currentUser(ctx).ID, req.ReceiverID, req.RoomID, req.Content, req.RelatedProductID)
		if err != nil {
			failErr(ctx, err)
			return
		}
		created(ctx, iris.Map{"message": "Gửi tin nhắn thành công", "data": view})
	})

	// 房间消息，仅房间成员可读
	messages.Get("/{roomId}", func(ctx iris.Context) {
		roomID := ctx.Params().Get("roomId")
		if !relay.RoomParticipant(roomID, currentUser(ctx).ID) {
			fail(ctx, iris.StatusForbidden, "Bạn không có quyền thực hiện thao tác này")
			return
		}
		list, err := a.chats.ListRoom(ctx.Request().Context(), roomID)
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"messages": list})
	})

	// 打开会话后把发给自己的消息置为已读
	messages.Put("/{roomId}/read", func(ctx iris.Context) {
		roomID := ctx.Params().Get("roomId")
		if !relay.RoomParticipant(roomID, currentUser(ctx).ID) {
			fail(ctx, iris.StatusForbidden, "Bạn không có quyền thực hiện thao tác này")
			return
		}
		if err := a.chats.MarkRead(ctx.Request().Context(), roomID, currentUser(ctx).ID); err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"message": "Đã đánh dấu đã đọc"})
	})

	messages.Delete("/{messageId:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("messageId")
		m, err := a.chats.Recall(ctx.Request().Context(), id, currentUser(ctx).ID)
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"message": "Đã thu hồi tin nhắn", "data": m})
	})
}
