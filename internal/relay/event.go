package relay

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

// 房间事件类型，与前端 socket 协议一致
const (
	EventReceiveMessage = "receive-message"
	EventRecallMessage  = "recall-message"
)

// Event 房间级的聊天事件。只做转发，不落库、不校验内容。
// SenderID 用于广播时跳过发起方自己的连接。
type Event struct {
	Type     string          `json:"type"`
	RoomID   string          `json:"roomId"`
	SenderID int64           `json:"senderId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Publisher 事件发布方。消息引擎发送/撤回后通过它通知在线的会话参与者。
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// RoomParticipant 校验 userID 是否是 roomID（"a_b" 形式）编码的参与者之一。
// 订阅房间前必须通过该校验，知道 roomId 不等于有权收听。
func RoomParticipant(roomID string, userID int64) bool {
	parts := strings.SplitN(roomID, "_", 2)
	if len(parts) != 2 {
		return false
	}
	id := strconv.FormatInt(userID, 10)
	return parts[0] == id || parts[1] == id
}
