package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/soradaze/qmatch/internal/ai"
	"github.com/soradaze/qmatch/internal/matching"
)

const (
	// SubjectThreadCreated carries newly posted questions.
	SubjectThreadCreated = "qa.thread.created"
	// SubjectAnswerPosted fires after a responder's answer is stored.
	SubjectAnswerPosted = "qa.answer.posted"

	queueGroup = "qmatch"
)

// ThreadCreated is the payload published by the platform when an asker
// posts a question.
type ThreadCreated struct {
	ThreadID string `json:"thread_id"`
	Body     string `json:"body"`
}

// AnswerPosted is the payload published after an answer is persisted.
type AnswerPosted struct {
	ResponderID string `json:"responder_id"`
}

// Consumer binds platform events to matching and stats runs. Every
// event is handled in its own goroutine and handler failures are
// logged, never propagated back to the publisher.
type Consumer struct {
	nc      *nats.Conn
	ai      ai.Service
	matcher *matching.Service
	logger  *zap.Logger
	subs    []*nats.Subscription
}

func NewConsumer(natsURL string, aiService ai.Service, matcher *matching.Service, logger *zap.Logger) (*Consumer, error) {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return &Consumer{
		nc:      nc,
		ai:      aiService,
		matcher: matcher,
		logger:  logger,
	}, nil
}

// Start subscribes to both subjects in a shared queue group so
// multiple workers split the load.
func (c *Consumer) Start() error {
	threadSub, err := c.nc.QueueSubscribe(SubjectThreadCreated, queueGroup, func(msg *nats.Msg) {
		var event ThreadCreated
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			c.logger.Error("Failed to decode thread created event", zap.Error(err))
			return
		}
		go c.handleThreadCreated(event)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectThreadCreated, err)
	}
	c.subs = append(c.subs, threadSub)

	answerSub, err := c.nc.QueueSubscribe(SubjectAnswerPosted, queueGroup, func(msg *nats.Msg) {
		var event AnswerPosted
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			c.logger.Error("Failed to decode answer posted event", zap.Error(err))
			return
		}
		go c.handleAnswerPosted(event)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectAnswerPosted, err)
	}
	c.subs = append(c.subs, answerSub)

	return nil
}

func (c *Consumer) handleThreadCreated(event ThreadCreated) {
	ctx := context.Background()

	structured, err := c.ai.StructureQuestion(ctx, event.Body)
	if err != nil {
		c.logger.Error("Failed to structure question",
			zap.Error(err),
			zap.String("thread_id", event.ThreadID))
		return
	}

	result, err := c.matcher.MatchResponders(ctx, matching.Input{
		ThreadID:       event.ThreadID,
		Categories:     structured.Categories,
		EstimatedLevel: structured.EstimatedLevel,
	})
	if err != nil {
		c.logger.Error("Matching run failed",
			zap.Error(err),
			zap.String("thread_id", event.ThreadID))
		return
	}

	c.logger.Info("Matched responders",
		zap.String("thread_id", event.ThreadID),
		zap.Strings("categories", structured.Categories),
		zap.Int("candidates", len(result.Candidates)),
		zap.Int("assigned", result.AssignedCount))
}

func (c *Consumer) handleAnswerPosted(event AnswerPosted) {
	ctx := context.Background()

	if err := c.matcher.UpdateResponderStats(ctx, event.ResponderID); err != nil {
		c.logger.Error("Stats recomputation failed",
			zap.Error(err),
			zap.String("responder_id", event.ResponderID))
		return
	}

	c.logger.Info("Recomputed responder stats",
		zap.String("responder_id", event.ResponderID))
}

// Close drains the subscriptions and the connection.
func (c *Consumer) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.subs = nil

	if c.nc != nil {
		c.nc.Close()
	}
}
