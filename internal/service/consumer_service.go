package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"inventory-agent-be/internal/dto"
	"inventory-agent-be/internal/entity"
	"inventory-agent-be/internal/repository/contract"
	"inventory-agent-be/pkg/events"
	pktNats "inventory-agent-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	auditRepo contract.AuditRepository
	natsPub   *pktNats.Publisher
}

// NewConsumerService persists audit records off the request path.
// natsPub may be nil when no NATS server is configured.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	auditRepo contract.AuditRepository,
	natsPub *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		auditRepo: auditRepo,
		natsPub:   natsPub,
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
	var payload dto.PublishRequestAuditMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal audit message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	categories, _ := json.Marshal(payload.Categories)
	errs, _ := json.Marshal(payload.Errors)

	audit := &entity.RequestAudit{
		Id:         uuid.New(),
		SessionId:  payload.SessionId,
		Question:   payload.Question,
		Answer:     payload.Answer,
		Categories: categories,
		Errors:     errs,
		ElapsedMs:  payload.ElapsedMs,
		CreatedAt:  time.Now().UTC(),
	}

	if err := cs.auditRepo.Create(ctx, audit); err != nil {
		log.Printf("[ERROR] Failed to persist audit for session %s: %v", payload.SessionId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	if cs.natsPub != nil {
		var errMaps []map[string]interface{}
		for _, e := range payload.Errors {
			errMaps = append(errMaps, map[string]interface{}{"stage": e.Stage, "message": e.Message})
		}
		event := events.NewRequestProcessed(
			payload.SessionId,
			payload.Question,
			payload.Answer,
			payload.Categories,
			errMaps,
			payload.ElapsedMs,
		)
		pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := cs.natsPub.Publish(pubCtx, event); err != nil {
			log.Printf("[WARN] Failed to forward audit event to NATS: %v", err)
			// Local record is already persisted, do not retry the whole message.
		}
		cancel()
	}

	msg.Ack()
}
