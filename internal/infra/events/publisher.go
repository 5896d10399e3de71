package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"camerastore/internal/domain/model"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"
)

type EventType string

const (
	OrderCreated   EventType = "order.created"
	OrderUpdated   EventType = "order.updated"
	OrderCancelled EventType = "order.cancelled"
	OrderDeleted   EventType = "order.deleted"
)

// トピックに流すメッセージ本体
type OrderEvent struct {
	ID          string            `json:"id"`
	Type        EventType         `json:"type"`
	OrderID     int64             `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	UserID      int64             `json:"user_id"`
	Status      model.OrderStatus `json:"status"`
	FinalTotal  int64             `json:"final_total"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

func NewOrderEvent(t EventType, o model.Order) OrderEvent {
	return OrderEvent{
		ID:          uuid.NewString(),
		Type:        t,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Status:      o.Status,
		FinalTotal:  o.Amount.FinalTotal,
		OccurredAt:  time.Now().UTC(),
	}
}

type KafkaOptions struct {
	Brokers  []string
	Topic    string
	Username string
	Password string
}

// KafkaPublisher は注文イベントを非同期でproduceする。
// 送信失敗はログに残すだけで呼び出し元には返さない。
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *log.Logger
}

func NewKafkaPublisher(opt KafkaOptions, lg *log.Logger) (*KafkaPublisher, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(opt.Brokers...),
		kgo.DefaultProduceTopic(opt.Topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProducerLinger(10 * time.Millisecond),
	}

	if opt.Username != "" && opt.Password != "" {
		opts = append(opts, kgo.SASL(plain.Auth{
			User: opt.Username,
			Pass: opt.Password,
		}.AsMechanism()))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	return &KafkaPublisher{client: client, topic: opt.Topic, logger: lg}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev OrderEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		//同じ注文のイベントは同じパーティションに
		Key:   []byte(strconv.FormatInt(ev.OrderID, 10)),
		Value: data,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(ev.Type)},
			{Key: "event_id", Value: []byte(ev.ID)},
		},
		Timestamp: ev.OccurredAt,
	}

	// リクエストのctxがキャンセルされてもproduceは続ける
	p.client.Produce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Errorf("produce %s for order %d: %v", ev.Type, ev.OrderID, err)
			return
		}
		p.logger.Debugf("produced %s for order %d to partition %d at offset %d", ev.Type, ev.OrderID, r.Partition, r.Offset)
	})
	return nil
}

// バッファに残っているレコードを送り切ってから閉じる
func (p *KafkaPublisher) Close(ctx context.Context) error {
	err := p.client.Flush(ctx)
	p.client.Close()
	return err
}

// KAFKA_BROKERS未設定のとき用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NopPublisher) Close(context.Context) error               { return nil }
