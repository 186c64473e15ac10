package service

import (
	"context"

	"inventory-agent-be/internal/dto"
	"inventory-agent-be/internal/pkg/logger"
	"inventory-agent-be/pkg/agent/executor"
	"inventory-agent-be/pkg/llm/fallback"
)

type IAgentService interface {
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error)
	Health(ctx context.Context) *dto.HealthResponse
}

type agentService struct {
	pipeline  *executor.Pipeline
	chain     *fallback.Chain
	publisher IPublisherService
	logger    logger.ILogger
}

func NewAgentService(
	pipeline *executor.Pipeline,
	chain *fallback.Chain,
	publisher IPublisherService,
	log logger.ILogger,
) IAgentService {
	return &agentService{
		pipeline:  pipeline,
		chain:     chain,
		publisher: publisher,
		logger:    log,
	}
}

func (s *agentService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	result, err := s.pipeline.Ask(ctx, req.Question, req.SessionId)
	if err != nil {
		s.logger.Error("agent", "Pipeline run failed", map[string]interface{}{
			"session_id": req.SessionId,
			"error":      err.Error(),
		})
		return nil, err
	}

	res := &dto.AskResponse{
		Answer:     result.Answer,
		SessionId:  result.SessionID,
		Categories: result.Categories,
		ElapsedMs:  result.Elapsed.Milliseconds(),
	}
	for _, e := range result.Errors {
		res.Errors = append(res.Errors, dto.ErrorRecordDTO{Stage: e.Stage, Message: e.Message})
	}

	if err := s.publisher.PublishRequestAudit(ctx, &dto.PublishRequestAuditMessage{
		SessionId:  res.SessionId,
		Question:   req.Question,
		Answer:     res.Answer,
		Categories: res.Categories,
		Errors:     res.Errors,
		ElapsedMs:  res.ElapsedMs,
	}); err != nil {
		// Auditing never blocks the answer.
		s.logger.Warn("agent", "Audit publish failed", map[string]interface{}{
			"session_id": res.SessionId,
			"error":      err.Error(),
		})
	}

	return res, nil
}

func (s *agentService) Health(_ context.Context) *dto.HealthResponse {
	providers := s.chain.Active()
	status := "ok"
	if len(providers) == 0 {
		status = "degraded"
	}
	return &dto.HealthResponse{
		Status:    status,
		Providers: providers,
	}
}
