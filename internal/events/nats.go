package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName JetStream 流名称
	StreamName = "APPROVALS"
	// SubjectDecisions 裁决事件主题通配
	SubjectDecisions = "approvals.>"
)

// DecisionSubject 返回业务域对应的裁决事件主题
func DecisionSubject(domain string) string {
	return fmt.Sprintf("approvals.%s.decided", domain)
}

// Publisher NATS JetStream 裁决事件发布器
type Publisher struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	natsURL string
}

// NewPublisher 创建发布器
func NewPublisher(url string) *Publisher {
	return &Publisher{natsURL: url}
}

// Connect 连接 NATS 并确保流存在
func (p *Publisher) Connect(ctx context.Context) error {
	nc, err := nats.Connect(p.natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	p.nc = nc

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}
	p.js = js

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "Approval decision events",
		Subjects:    []string{SubjectDecisions},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// PublishDecision 发布裁决事件
func (p *Publisher) PublishDecision(ctx context.Context, ev *DecisionEvent) error {
	if p.js == nil {
		return fmt.Errorf("publisher not connected")
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal decision event: %w", err)
	}

	_, err = p.js.Publish(ctx, DecisionSubject(string(ev.Domain)), data)
	if err != nil {
		return fmt.Errorf("failed to publish decision event: %w", err)
	}
	return nil
}

// Close 关闭连接
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
