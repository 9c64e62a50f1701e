package service

import (
	"context"
	"encoding/json"
	"fmt"

	"leadscout-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IPublisherService fans job status changes out to in-process subscribers
// (the websocket bridge).
type IPublisherService interface {
	PublishJobUpdate(ctx context.Context, update dto.JobUpdateMessage) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (p *publisherService) PublishJobUpdate(ctx context.Context, update dto.JobUpdateMessage) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal job update: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.pubSub.Publish(p.topicName, msg); err != nil {
		return fmt.Errorf("publish job update: %w", err)
	}
	return nil
}
