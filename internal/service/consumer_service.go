package service

import (
	"context"
	"encoding/json"
	"log"

	"matvision-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the analysis queue. Job outcomes are recorded by
// the analysis service; this layer only decides ack versus redelivery.
type consumerService struct {
	pubSub          *gochannel.GoChannel
	topicName       string
	analysisService IAnalysisService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	analysisService IAnalysisService,
) IConsumerService {
	return &consumerService{
		pubSub:          pubSub,
		topicName:       topicName,
		analysisService: analysisService,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishAnalyzeMatchMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal analysis message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing analysis job %s (%d frames)", payload.JobId, len(payload.Frames))

	// ProcessJob returns nil once a terminal outcome is recorded, including
	// failures. An error means nothing was recorded and a retry can help.
	if err := cs.analysisService.ProcessJob(ctx, &payload); err != nil {
		log.Printf("[ERROR] Analysis job %s left unrecorded: %v", payload.JobId, err)
		msg.Nack()
		return
	}

	msg.Ack()
}
