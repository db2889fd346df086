package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"spendlens/internal/budget"
)

// AlertRaisedMessage announces a budget alert that appeared after a change
// to the budgets. It carries the full alert so consumers need no store access.
type AlertRaisedMessage struct {
	AlertID     string          `json:"alert_id"`
	Tier        budget.Tier     `json:"tier"`
	Severity    budget.Severity `json:"severity"`
	BudgetID    string          `json:"budget_id"`
	Category    string          `json:"category"`
	Utilization decimal.Decimal `json:"utilization"`
	Spent       decimal.Decimal `json:"spent"`
	Allocated   decimal.Decimal `json:"allocated"`
	Remaining   decimal.Decimal `json:"remaining"`
	Title       string          `json:"title"`
	Message     string          `json:"message"`
	Suggestion  string          `json:"suggestion"`
	RaisedAt    time.Time       `json:"raised_at"`
}

func NewAlertRaisedMessage(a budget.Alert) *AlertRaisedMessage {
	raisedAt := a.ComputedAt
	if raisedAt.IsZero() {
		raisedAt = time.Now()
	}
	return &AlertRaisedMessage{
		AlertID:     a.ID,
		Tier:        a.Tier,
		Severity:    a.Severity,
		BudgetID:    a.BudgetID,
		Category:    a.Category,
		Utilization: a.Utilization,
		Spent:       a.Spent,
		Allocated:   a.Allocated,
		Remaining:   a.Remaining,
		Title:       a.Title,
		Message:     a.Message,
		Suggestion:  a.Suggestion,
		RaisedAt:    raisedAt,
	}
}

// Alert rebuilds the alert the message was made from.
func (m *AlertRaisedMessage) Alert() budget.Alert {
	return budget.Alert{
		ID:          m.AlertID,
		Tier:        m.Tier,
		Severity:    m.Severity,
		BudgetID:    m.BudgetID,
		Category:    m.Category,
		Utilization: m.Utilization,
		Spent:       m.Spent,
		Allocated:   m.Allocated,
		Remaining:   m.Remaining,
		Title:       m.Title,
		Message:     m.Message,
		Suggestion:  m.Suggestion,
		ComputedAt:  m.RaisedAt,
	}
}

func (m *AlertRaisedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertRaisedMessageFromJSON decodes a message and rejects ones without an alert id.
func AlertRaisedMessageFromJSON(data []byte) (*AlertRaisedMessage, error) {
	var msg AlertRaisedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.AlertID == "" {
		return nil, fmt.Errorf("alert message without alert_id")
	}
	return &msg, nil
}
