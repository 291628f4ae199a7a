// Package notify publishes budget alert notifications to an AMQP broker.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/model"
)

// AlertMessage is the JSON body of a published budget alert.
type AlertMessage struct {
	Type                model.NotificationType `json:"type"`
	BudgetID            model.BudgetID         `json:"budget_id"`
	CategoryID          model.CategoryID       `json:"category_id"`
	Level               model.AlertLevel       `json:"level"`
	ThresholdPercentage decimal.Decimal        `json:"threshold_percentage"`
	Threshold           decimal.Decimal        `json:"threshold"`
	Spent               decimal.Decimal        `json:"spent"`
	Amount              decimal.Decimal        `json:"amount"`
	Month               string                 `json:"month"`
	Title               string                 `json:"title"`
	Body                string                 `json:"body"`
	CreatedAt           time.Time              `json:"created_at"`
}

// NewAlertMessage builds a message for alert stamped with now.
func NewAlertMessage(alert model.BudgetAlert, now time.Time) *AlertMessage {
	return &AlertMessage{
		Type:                alert.Type,
		BudgetID:            alert.BudgetID,
		CategoryID:          alert.CategoryID,
		Level:               alert.Level,
		ThresholdPercentage: alert.ThresholdPercentage,
		Threshold:           alert.Threshold,
		Spent:               alert.Spent,
		Amount:              alert.Amount,
		Month:               alert.Month,
		Title:               alertTitle(alert),
		Body: fmt.Sprintf("You have reached %s%% of your budget (%s / %s)",
			alert.ThresholdPercentage.StringFixed(0), alert.Spent.StringFixed(2), alert.Amount.StringFixed(2)),
		CreatedAt: now,
	}
}

func alertTitle(alert model.BudgetAlert) string {
	name := string(alert.CategoryID)
	if name == "" {
		name = string(alert.BudgetID)
	}
	if alert.Level == model.AlertCritical {
		return "Budget " + name + " exceeded"
	}
	return "Budget " + name + ": warning"
}

// ToJSON converts the message to JSON bytes.
func (m *AlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertMessageFromJSON decodes a message from JSON bytes.
func AlertMessageFromJSON(data []byte) (*AlertMessage, error) {
	var msg AlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
