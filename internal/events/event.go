// Package events 裁决事件的扇出:WebSocket 广播给看板客户端,NATS 发布给下游系统
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/darkstoreops/approval-api/internal/workflow"
	"github.com/sirupsen/logrus"
)

// DecisionEvent 裁决事件
type DecisionEvent struct {
	Domain    workflow.Domain `json:"domain"`
	Task      *workflow.Task  `json:"task"`
	Outcome   workflow.Status `json:"outcome"`
	Actor     string          `json:"actor"`
	DecidedAt time.Time       `json:"decided_at"`
}

// Notifier 裁决事件通知接口
// 实现必须尽力而为:通知失败不得影响裁决本身
type Notifier interface {
	NotifyDecision(ctx context.Context, ev *DecisionEvent)
}

// Fanout 将事件同时推送到多个下游
type Fanout struct {
	hub       *Hub
	publisher *Publisher
	logger    *logrus.Logger
}

// NewFanout 创建事件扇出,hub 和 publisher 均可为 nil
func NewFanout(hub *Hub, publisher *Publisher, logger *logrus.Logger) *Fanout {
	return &Fanout{
		hub:       hub,
		publisher: publisher,
		logger:    logger,
	}
}

// NotifyDecision 推送裁决事件
func (f *Fanout) NotifyDecision(ctx context.Context, ev *DecisionEvent) {
	if f.hub != nil {
		data, err := json.Marshal(ev)
		if err == nil {
			f.hub.Broadcast <- data
		} else if f.logger != nil {
			f.logger.WithError(err).Warn("failed to marshal decision event")
		}
	}

	if f.publisher != nil {
		if err := f.publisher.PublishDecision(ctx, ev); err != nil && f.logger != nil {
			f.logger.WithError(err).WithField("task_id", ev.Task.ID).Warn("failed to publish decision event")
		}
	}
}
