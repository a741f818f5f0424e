package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// MessageHandler receives each consumed message value.
type MessageHandler func(ctx context.Context, value []byte) error

type ConsumerGroupHandler struct {
	handle MessageHandler
	logger *zap.Logger
}

func NewConsumerGroupHandler(handle MessageHandler, logger *zap.Logger) ConsumerGroupHandler {
	return ConsumerGroupHandler{handle: handle, logger: logger}
}

func (ConsumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (ConsumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks every message, including ones the handler rejects;
// the relay is best-effort.
func (h ConsumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if err := h.handle(session.Context(), msg.Value); err != nil {
			h.logger.Warn("handle message",
				zap.String("topic", msg.Topic), zap.Int32("partition", msg.Partition),
				zap.Int64("offset", msg.Offset), zap.Error(err))
		}
		session.MarkMessage(msg, "")
	}
	return nil
}

// StartSaramaConsumer blocks until ctx is cancelled.
func StartSaramaConsumer(ctx context.Context, brokers []string, groupID string, topics []string, handler ConsumerGroupHandler, logger *zap.Logger) error {
	config := sarama.NewConfig()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	consumerGroup, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() {
		if err := consumerGroup.Close(); err != nil {
			logger.Error("close consumer group", zap.Error(err))
		}
	}()

	for {
		if err := consumerGroup.Consume(ctx, topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			logger.Error("consume", zap.Error(err))
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}
