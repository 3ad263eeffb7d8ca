package pubsub

import (
	"context"
	"time"
)

type Pack struct {
	Key []byte
	Msg []byte

	// Topic is set on received packs only.
	Topic string
}

type Publisher interface {
	Publish(context.Context, string, *Pack) error
}

type nopPublisher struct{}

// NewNopPublisher drops every message. It is used when no broker is
// configured.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, *Pack) error {
	return nil
}

type localPublisher struct {
	handler SubscribeHandler
}

// NewLocalPublisher hands every message to handler in the calling goroutine.
// It stands in for a broker when publisher and subscriber share a process.
func NewLocalPublisher(handler SubscribeHandler) Publisher {
	return &localPublisher{handler: handler}
}

func (p *localPublisher) Publish(ctx context.Context, topic string, pack *Pack) error {
	p.handler(ctx, &Pack{Key: pack.Key, Msg: pack.Msg, Topic: topic}, time.Now())
	return nil
}
