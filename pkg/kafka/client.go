// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"supplier-smart-go/internal/config"
	"supplier-smart-go/pkg/database"
	"supplier-smart-go/pkg/log"
	"supplier-smart-go/pkg/tasks"

	"github.com/segmentio/kafka-go"
)

// EventProcessor defines the interface for any service that can process a query event.
// This decouples the Kafka consumer from the concrete aggregator implementation.
type EventProcessor interface {
	Process(ctx context.Context, event tasks.QueryEvent) error
}

// Producer 封装了查询事件的 Kafka 生产者。
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 初始化 Kafka 生产者。
func NewProducer(cfg config.KafkaConfig) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
	return &Producer{writer: writer}
}

// PublishQueryEvent 发送一个查询事件到 Kafka。
func (p *Producer) PublishQueryEvent(event tasks.QueryEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(context.Background(),
		kafka.Message{
			Value: eventBytes,
		},
	)
}

// Close 关闭生产者底层连接。
func (p *Producer) Close() error {
	return p.writer.Close()
}

// 消费者失败退避的上下界。
const (
	consumerMinBackoff = time.Second
	consumerMaxBackoff = time.Minute
)

// StartConsumer 启动一个 Kafka 消费者来处理查询事件。
// 读取失败时按指数退避重建 Reader，消费循环不会因单次故障永久停止。
func StartConsumer(cfg config.KafkaConfig, processor EventProcessor) {
	backoff := consumerMinBackoff
	for {
		r := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  []string{cfg.Brokers},
			Topic:    cfg.Topic,
			GroupID:  "supplier-smart-go-consumer",
			MinBytes: 10e3, // 10KB
			MaxBytes: 10e6, // 10MB
		})

		log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)

		backoff = consumeLoop(r, processor, backoff)

		if err := r.Close(); err != nil {
			log.Errorf("关闭 Kafka 消费者失败: %v", err)
		}
		log.Warnf("Kafka 消费循环中断，%s 后重建消费者", backoff)
		time.Sleep(backoff)
		backoff = nextBackoff(backoff)
	}
}

// consumeLoop 在单个 Reader 上持续消费，读取失败时返回以触发重建。
// 返回下一轮的起始退避：期间处理过消息则重置到下界。
func consumeLoop(r *kafka.Reader, processor EventProcessor, backoff time.Duration) time.Duration {
	for {
		m, err := r.FetchMessage(context.Background())
		if err != nil {
			log.Error("从 Kafka 读取消息失败", err)
			return backoff
		}
		backoff = consumerMinBackoff

		var event tasks.QueryEvent
		if err := json.Unmarshal(m.Value, &event); err != nil {
			log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
			// 消息格式错误，直接提交，避免阻塞队列
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("提交错误消息失败: %v", err)
			}
			continue
		}

		if err := processor.Process(context.Background(), event); err != nil {
			log.Errorf("处理查询事件失败: EventID=%s, Error: %v", event.EventID, err)
			// 使用 Redis 计数失败次数，达到阈值后提交 offset 终止重试
			attemptsKey := fmt.Sprintf("kafka:attempts:%s", event.EventID)
			attempts, incErr := database.RDB.Incr(context.Background(), attemptsKey).Result()
			if incErr == nil {
				_ = database.RDB.Expire(context.Background(), attemptsKey, 24*time.Hour).Err()
			}
			if incErr != nil {
				// Redis 异常时保守处理：不提交 offset，让 Kafka 重试
				continue
			}
			if attempts >= 3 {
				log.Errorf("查询事件多次失败(>=3)，提交 offset 终止重试: EventID=%s", event.EventID)
				if err := r.CommitMessages(context.Background(), m); err != nil {
					log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
				}
			}
			// attempts < 3 时，不提交 offset 让 Kafka 自动重试
		} else {
			// 清理失败计数并手动提交 offset
			_ = database.RDB.Del(context.Background(), fmt.Sprintf("kafka:attempts:%s", event.EventID)).Err()
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
			}
		}
	}
}

// nextBackoff 返回翻倍后的退避时长，封顶 consumerMaxBackoff。
func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > consumerMaxBackoff {
		return consumerMaxBackoff
	}
	return d
}
