package servicebus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"viewtube/domain/model"
	"viewtube/domain/repository"
	"viewtube/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// VideoEventServiceBus sends video events to an Azure Service Bus queue
type VideoEventServiceBus struct {
	AzservicebusClient *azservicebus.Client
	queue              string

	mu     sync.Mutex
	sender *azservicebus.Sender
}

func NewVideoEventServiceBus(azServiceBusClient *azservicebus.Client, queue string) repository.IVideoEventSink {
	return &VideoEventServiceBus{AzservicebusClient: azServiceBusClient, queue: queue}
}

func (s *VideoEventServiceBus) Name() string {
	return "servicebus:" + s.queue
}

func (s *VideoEventServiceBus) getSender() (*azservicebus.Sender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sender != nil {
		return s.sender, nil
	}
	sender, err := s.AzservicebusClient.NewSender(s.queue, nil)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return nil, err
	}
	s.sender = sender
	return sender, nil
}

func (s *VideoEventServiceBus) PublishVideoEvent(ctx context.Context, event model.VideoEvent) error {
	if s.AzservicebusClient == nil {
		return errors.New("service bus client not configured")
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode video event: %w", err)
	}
	sender, err := s.getSender()
	if err != nil {
		return err
	}

	contentType := "application/json"
	subject := string(event.Type)
	msg := &azservicebus.Message{
		Body:        body,
		MessageID:   &event.ID,
		ContentType: &contentType,
		Subject:     &subject,
		ApplicationProperties: map[string]any{
			"video_id": event.VideoID,
		},
	}
	if err := sender.SendMessage(ctx, msg, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}
	return nil
}
