package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"viewtube/domain/model"
	"viewtube/domain/repository"
	"viewtube/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

// VideoEventPubSub publishes video events to a Google Cloud Pub/Sub topic
type VideoEventPubSub struct {
	PubSubClient *pubsub.Client
	topicName    string

	once  sync.Once
	topic *pubsub.Topic
	err   error
}

func NewVideoEventPubSub(pubSubClient *pubsub.Client, topicName string) repository.IVideoEventSink {
	return &VideoEventPubSub{PubSubClient: pubSubClient, topicName: topicName}
}

func (p *VideoEventPubSub) Name() string {
	return "pubsub:" + p.topicName
}

// ensureTopic resolves the topic once, creating it when missing.
func (p *VideoEventPubSub) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	p.once.Do(func() {
		topic := p.PubSubClient.Topic(p.topicName)
		exists, err := topic.Exists(ctx)
		if err != nil {
			p.err = err
			return
		}
		if !exists {
			logger.GetLogger().WithField("topic", p.topicName).Info("Topic doesn't exist - creating it")
			topic, err = p.PubSubClient.CreateTopic(ctx, p.topicName)
			if err != nil {
				p.err = err
				return
			}
		}
		p.topic = topic
	})
	return p.topic, p.err
}

func (p *VideoEventPubSub) PublishVideoEvent(ctx context.Context, event model.VideoEvent) error {
	if p.PubSubClient == nil {
		return errors.New("pubsub client not configured")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode video event: %w", err)
	}
	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve topic %s: %w", p.topicName, err)
	}

	msg := &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_id":   event.ID,
			"event_type": string(event.Type),
			"video_id":   strconv.FormatInt(event.VideoID, 10),
		},
	}
	serverID, err := topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return err
	}

	logger.GetLogger().WithField("server ID", serverID).WithField("event_type", event.Type).Debug("Video event published")
	return nil
}
