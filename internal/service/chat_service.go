package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/chat"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/user"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/relay"
)

// recallWindow 消息撤回窗口
const recallWindow = 5 * time.Minute

// ChatService 消息引擎：会话推导、收发、撤回、会话聚合
type ChatService struct {
	messages  chat.Repository
	users     user.Repository
	publisher relay.Publisher // 可为 nil，事件即发即弃
}

// NewChatService 创建聊天服务
func NewChatService(messages chat.Repository, users user.Repository, publisher relay.Publisher) *ChatService {
	return &ChatService{
		messages:  messages,
		users:     users,
		publisher: publisher,
	}
}

// RoomID 两个用户 ID 按字典序排序后用下划线拼接，对无序对唯一且对称
func RoomID(a, b int64) string {
	x, y := strconv.FormatInt(a, 10), strconv.FormatInt(b, 10)
	if x > y {
		x, y = y, x
	}
	return x + "_" + y
}

// MessageView 消息展示视图，收发双方身份展开
type MessageView struct {
	*chat.Message
	Sender   user.Public `json:"sender"`
	Receiver user.Public `json:"receiver"`
}

func (s *ChatService) expand(ctx context.Context, m *chat.Message) *MessageView {
	v := &MessageView{Message: m}
	if u, err := s.users.GetByID(ctx, m.SenderID); err == nil {
		v.Sender = u.PublicView()
	}
	if u, err := s.users.GetByID(ctx, m.ReceiverID); err == nil {
		v.Receiver = u.PublicView()
	}
	return v
}

func (s *ChatService) publish(ctx context.Context, evt relay.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("chat event publish failed", zap.Error(err))
		return
	}
	GetMonitor().RecordRelayEvent()
}

// Send 发消息。roomId 为空时按收发双方推导；落库后向房间推送实时事件。
func (s *ChatService) Send(ctx context.Context, senderID, receiverID int64, roomID, content string, relatedProductID *int64) (*MessageView, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", ErrBadInput)
	}
	if receiverID == 0 || receiverID == senderID {
		return nil, fmt.Errorf("%w: invalid receiver", ErrBadInput)
	}
	if roomID == "" {
		roomID = RoomID(senderID, receiverID)
	}

	m := &chat.Message{
		RoomID:           roomID,
		SenderID:         senderID,
		ReceiverID:       receiverID,
		Content:          content,
		RelatedProductID: relatedProductID,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	GetMonitor().RecordMessageSent()

	view := s.expand(ctx, m)
	if payload, err := json.Marshal(view); err == nil {
		s.publish(ctx, relay.Event{
			Type:     relay.EventReceiveMessage,
			RoomID:   roomID,
			SenderID: senderID,
			Payload:  payload,
		})
	}
	return view, nil
}

// ListRoom 房间内未撤回的消息，旧的在前
func (s *ChatService) ListRoom(ctx context.Context, roomID string) ([]*MessageView, error) {
	list, err := s.messages.ListByRoom(ctx, roomID)
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	views := make([]*MessageView, 0, len(list))
	for _, m := range list {
		views = append(views, s.expand(ctx, m))
	}
	return views, nil
}

// Recall 撤回：仅发送者本人、发出 5 分钟内可撤。软删除，内容保留。
func (s *ChatService) Recall(ctx context.Context, messageID, actorID int64) (*chat.Message, error) {
	m, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		GetMonitor().RecordDBError()
		return nil, err
	}
	if m.SenderID != actorID {
		return nil, ErrForbidden
	}
	now := time.Now()
	if now.Sub(m.CreatedAt) > recallWindow {
		return nil, ErrRecallExpired
	}

	if err := s.messages.MarkDeleted(ctx, m.ID, now); err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	m.IsDeleted = true
	m.DeletedAt = &now
	GetMonitor().RecordMessageRecalled()

	payload, _ := json.Marshal(map[string]interface{}{
		"messageId": m.ID,
		"roomId":    m.RoomID,
	})
	s.publish(ctx, relay.Event{
		Type:     relay.EventRecallMessage,
		RoomID:   m.RoomID,
		SenderID: actorID,
		Payload:  payload,
	})
	return m, nil
}

// Conversation 会话摘要：每个房间取最新一条消息做预览
type Conversation struct {
	RoomID          string      `json:"roomId"`
	OtherUser       user.Public `json:"otherUser"`
	LastMessage     string      `json:"lastMessage"`
	LastMessageTime time.Time   `json:"lastMessageTime"`
	UnreadCount     int64       `json:"unreadCount"`
}

// Conversations 按房间聚合用户的全部消息。消息按时间倒序扫描，
// 每个房间第一次遇到的即最新一条；对端用户已注销的房间跳过。
func (s *ChatService) Conversations(ctx context.Context, userID int64) ([]*Conversation, error) {
	messages, err := s.messages.ListByUser(ctx, userID)
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}

	seen := make(map[string]struct{})
	conversations := make([]*Conversation, 0)
	for _, m := range messages {
		if _, ok := seen[m.RoomID]; ok {
			continue
		}
		seen[m.RoomID] = struct{}{}

		otherID := m.SenderID
		if otherID == userID {
			otherID = m.ReceiverID
		}
		other, err := s.users.GetByID(ctx, otherID)
		if err != nil {
			// 对端不存在（已注销/已删除）时整个会话不展示
			zap.L().Debug("conversation peer missing",
				zap.String("room_id", m.RoomID), zap.Int64("user_id", otherID))
			continue
		}

		unread, err := s.messages.CountUnread(ctx, m.RoomID, userID)
		if err != nil {
			GetMonitor().RecordDBError()
			return nil, err
		}

		conversations = append(conversations, &Conversation{
			RoomID:          m.RoomID,
			OtherUser:       other.PublicView(),
			LastMessage:     m.Content,
			LastMessageTime: m.CreatedAt,
			UnreadCount:     unread,
		})
	}
	return conversations, nil
}

// MarkRead 打开会话时调用，把房间内发给自己的消息全部置为已读
func (s *ChatService) MarkRead(ctx context.Context, roomID string, userID int64) error {
	if err := s.messages.MarkRead(ctx, roomID, userID); err != nil {
		GetMonitor().RecordDBError()
		return err
	}
	return nil
}
