package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/Shopify/sarama"
	"github.com/wtfpad/backend/pkg/pubsub"
	"github.com/wtfpad/backend/pkg/xcontext"
)

type subscriber struct {
	groupID string
	topics  []string
	client  sarama.ConsumerGroup
	handler pubsub.SubscribeHandler
}

func NewSubscriber(
	groupID string,
	brokerAddrs []string,
	topics []string,
	handler pubsub.SubscribeHandler,
) (*subscriber, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	// Only live events matter to connected clients.
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	client, err := sarama.NewConsumerGroup(brokerAddrs, groupID, config)
	if err != nil {
		return nil, err
	}

	return &subscriber{
		groupID: groupID,
		topics:  topics,
		client:  client,
		handler: handler,
	}, nil
}

func (s *subscriber) Stop(ctx context.Context) error {
	return s.client.Close()
}

// Subscribe blocks until ctx is done. Consume returns on every rebalance, so
// it is called in a loop.
func (s *subscriber) Subscribe(ctx context.Context) {
	consumer := consumerGroupHandler{fn: s.handler}
	for {
		if err := s.client.Consume(ctx, s.topics, &consumer); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}

			xcontext.Logger(ctx).Errorf("Error from consumer group %s: %v", s.groupID, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}

		if ctx.Err() != nil {
			return
		}
	}
}

type consumerGroupHandler struct {
	fn pubsub.SubscribeHandler
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		session.MarkMessage(message, "")
		h.fn(session.Context(), &pubsub.Pack{Key: message.Key, Msg: message.Value, Topic: message.Topic}, message.Timestamp)
	}

	return nil
}
