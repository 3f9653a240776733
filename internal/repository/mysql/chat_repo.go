package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/chat"
)

type chatRepo struct {
	db *gorm.DB
}

// NewChatRepository 创建聊天消息仓储
func NewChatRepository(db *gorm.DB) chat.Repository {
	return &chatRepo{db: db}
}

func (r *chatRepo) Create(ctx context.Context, m *chat.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *chatRepo) GetByID(ctx context.Context, id int64) (*chat.Message, error) {
	var m chat.Message
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *chatRepo) ListByRoom(ctx context.Context, roomID string) ([]*chat.Message, error) {
	var list []*chat.Message
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND is_deleted = ?", roomID, false).
		Order("created_at ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *chatRepo) ListByUser(ctx context.Context, userID int64) ([]*chat.Message, error) {
	var list []*chat.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *chatRepo) MarkDeleted(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&chat.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": at,
		}).Error
}

func (r *chatRepo) MarkRead(ctx context.Context, roomID string, receiverID int64) error {
	return r.db.WithContext(ctx).Model(&chat.Message{}).
		Where("room_id = ? AND receiver_id = ? AND is_read = ?", roomID, receiverID, false).
		Update("is_read", true).Error
}

func (r *chatRepo) CountUnread(ctx context.Context, roomID string, receiverID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&chat.Message{}).
		Where("room_id = ? AND receiver_id = ? AND is_read = ? AND is_deleted = ?", roomID, receiverID, false, false).
		Count(&n).Error
	return n, err
}
