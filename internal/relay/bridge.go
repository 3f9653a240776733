package relay

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// chatExchange 聊天事件的 fanout 交换机
const chatExchange = "chat.events"

// MQPublisher 把房间事件发到 RabbitMQ，由本进程（或其它实例）的消费者回灌给 Hub。
// 事件即发即弃：不持久化、不确认。
type MQPublisher struct {
	ch *amqp.Channel
}

// NewMQPublisher 打开通道并声明交换机
func NewMQPublisher(conn *amqp.Connection) (*MQPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(chatExchange, "fanout", false, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return &MQPublisher{ch: ch}, nil
}

// Publish 发布一条房间事件
func (p *MQPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(
		ctx,
		chatExchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// Close 关闭底层通道
func (p *MQPublisher) Close() error {
	return p.ch.Close()
}

// StartConsumer 订阅交换机并把事件转给 Hub 扇出。
// 每个进程一个独占临时队列，进程退出队列自动清理。
func StartConsumer(conn *amqp.Connection, hub *Hub) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(chatExchange, "fanout", false, false, false, false, nil); err != nil {
		return err
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return err
	}
	if err := ch.QueueBind(q.Name, "", chatExchange, false, nil); err != nil {
		return err
	}
	msgs, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for d := range msgs {
			var evt Event
			if err := json.Unmarshal(d.Body, &evt); err != nil {
				zap.L().Warn("relay consumer bad event", zap.Error(err))
				continue
			}
			hub.BroadcastRoom(evt.RoomID, evt.SenderID, d.Body)
		}
		zap.L().Warn("relay consumer channel closed")
	}()
	return nil
}
