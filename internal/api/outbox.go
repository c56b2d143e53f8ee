package api

import (
	"context"
	"sync"

	"github.com/hojanyaz/hr-psychobot/internal/report"
)

// OutMessage is one outbound chat message produced by the bot core.
type OutMessage struct {
	Type  string              `json:"type"` // question | notice | summary
	Label string              `json:"label,omitempty"`
	Text  string              `json:"text"`
	Scale int                 `json:"scale,omitempty"`
	Chart []report.ChartPoint `json:"chart,omitempty"`
}

// Outbox is the HTTP-transport Presenter: it queues outbound messages per
// user so the chat handler can return them in the event response. A real
// push transport would deliver them instead.
type Outbox struct {
	mu   sync.Mutex
	msgs map[int64][]OutMessage
}

func NewOutbox() *Outbox {
	return &Outbox{msgs: map[int64][]OutMessage{}}
}

func (o *Outbox) AskQuestion(ctx context.Context, userID int64, label, text string, scale int) error {
	o.push(userID, OutMessage{Type: "question", Label: label, Text: text, Scale: scale})
	return nil
}

func (o *Outbox) Notify(ctx context.Context, userID int64, text string) error {
	o.push(userID, OutMessage{Type: "notice", Text: text})
	return nil
}

func (o *Outbox) NotifyWithChart(ctx context.Context, userID int64, text string, points []report.ChartPoint) error {
	o.push(userID, OutMessage{Type: "summary", Text: text, Chart: points})
	return nil
}

func (o *Outbox) push(userID int64, m OutMessage) {
	o.mu.Lock()
	o.msgs[userID] = append(o.msgs[userID], m)
	o.mu.Unlock()
}

// Drain removes and returns the queued messages for a user.
func (o *Outbox) Drain(userID int64) []OutMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.msgs[userID]
	delete(o.msgs, userID)
	return out
}
