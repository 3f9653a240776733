package chat

import (
	"context"
	"time"
)

// Message 聊天消息。撤回为软删除：IsDeleted=true 且保留内容，列表查询过滤掉。
type Message struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	RoomID     string `gorm:"size:64;index:idx_room_created;not null" json:"roomId"`
	SenderID   int64  `gorm:"index;not null" json:"senderId"`
	ReceiverID int64  `gorm:"index;not null" json:"receiverId"`
	Content    string `gorm:"size:2048;not null" json:"content"`

	RelatedProductID *int64 `gorm:"index" json:"relatedProductId,omitempty"`

	IsRead    bool       `gorm:"not null;default:false" json:"isRead"`
	IsDeleted bool       `gorm:"not null;default:false" json:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_room_created" json:"createdAt"`
}

// Repository 消息仓储接口
type Repository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id int64) (*Message, error)
	// ListByRoom 返回房间内未撤回的消息，旧的在前
	ListByRoom(ctx context.Context, roomID string) ([]*Message, error)
	// ListByUser 返回用户收发的全部消息（含已撤回），新的在前，用于会话聚合
	ListByUser(ctx context.Context, userID int64) ([]*Message, error)
	// MarkDeleted 撤回：置 IsDeleted 并记录时间
	MarkDeleted(ctx context.Context, id int64, at time.Time) error
	// MarkRead 将房间内发给 receiverID 的未读消息全部置为已读
	MarkRead(ctx context.Context, roomID string, receiverID int64) error
	CountUnread(ctx context.Context, roomID string, receiverID int64) (int64, error)
}
