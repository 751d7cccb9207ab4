package main

import (
	"context"
	"fmt"
	"sync"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/outbox/registry"
)

type publisherSource interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

// pubsubSender keeps one Publisher per topic so batching and flow control
// carry across relay batches.
type pubsubSender struct {
	source publisherSource

	mu         sync.Mutex
	publishers map[string]*gcppubsub.Publisher
}

func newPubSubSender(source publisherSource) *pubsubSender {
	return &pubsubSender{source: source, publishers: map[string]*gcppubsub.Publisher{}}
}

func (s *pubsubSender) Ping(ctx context.Context) error {
	return s.source.Ping(ctx)
}

func (s *pubsubSender) Send(ctx context.Context, topic string, msg *gcppubsub.Message) error {
	pub := s.publisher(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher not configured for topic %s", topic))
	}
	_, err := pub.Publish(ctx, msg).Get(ctx)
	return err
}

func (s *pubsubSender) publisher(topic string) *gcppubsub.Publisher {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pub, ok := s.publishers[topic]; ok {
		return pub
	}
	pub := s.source.Publisher(topic)
	if pub != nil {
		s.publishers[topic] = pub
	}
	return pub
}

// Stop flushes pending messages on every publisher.
func (s *pubsubSender) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for topic, pub := range s.publishers {
		pub.Stop()
		delete(s.publishers, topic)
	}
}
