package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/util"
)

// EventType represents what happened to the entity
type EventType string

const (
	EventTypeCreated   EventType = "created"
	EventTypeUpdated   EventType = "updated"
	EventTypeDeleted   EventType = "deleted"
	EventTypeAllRead   EventType = "all_read"
	EventTypeCompleted EventType = "completed"
	EventTypeSnapshot  EventType = "snapshot"
	EventTypeRejected  EventType = "rejected"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeAlert   EntityType = "alert"
	EntityTypeExpense EntityType = "expense"
	EntityTypeIncome  EntityType = "income"
	EntityTypeGoal    EntityType = "goal"

	// subscription events answer the client's own requests and are always delivered
	EntityTypeSubscription EntityType = "subscription"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "alert.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "alert"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// AlertPayload is the wire form of an alert pushed to clients
type AlertPayload struct {
	ID             int32  `json:"id"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	AlertType      string `json:"alertType"`
	RelatedSubject string `json:"relatedSubject"`
	IsRead         bool   `json:"isRead"`
	CreatedOn      string `json:"createdOn"`
}

// NewAlertPayload converts a domain alert for the wire
func NewAlertPayload(alert *domain.Alert) AlertPayload {
	return AlertPayload{
		ID:             alert.ID,
		Title:          alert.Title,
		Message:        alert.Message,
		AlertType:      string(alert.AlertType),
		RelatedSubject: alert.RelatedSubject,
		IsRead:         alert.IsRead,
		CreatedOn:      util.FormatDate(alert.CreatedOn),
	}
}

// AlertCreated creates an alert.created event
func AlertCreated(alert *domain.Alert) Event {
	return NewEvent(EventTypeCreated, EntityTypeAlert, NewAlertPayload(alert))
}

// AlertUpdated creates an alert.updated event
func AlertUpdated(alert *domain.Alert) Event {
	return NewEvent(EventTypeUpdated, EntityTypeAlert, NewAlertPayload(alert))
}

// AlertDeleted creates an alert.deleted event
func AlertDeleted(id int32) Event {
	return NewEvent(EventTypeDeleted, EntityTypeAlert, map[string]int32{"id": id})
}

// AlertsAllRead creates an alert.all_read event carrying the number of alerts marked
func AlertsAllRead(count int64) Event {
	return NewEvent(EventTypeAllRead, EntityTypeAlert, map[string]int64{"count": count})
}

// ExpenseCreated creates an expense.created event
func ExpenseCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeExpense, payload)
}

// ExpenseUpdated creates an expense.updated event
func ExpenseUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeExpense, payload)
}

// ExpenseDeleted creates an expense.deleted event
func ExpenseDeleted(id int32) Event {
	return NewEvent(EventTypeDeleted, EntityTypeExpense, map[string]int32{"id": id})
}

// IncomeCreated creates an income.created event
func IncomeCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeIncome, payload)
}

// IncomeUpdated creates an income.updated event
func IncomeUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeIncome, payload)
}

// IncomeDeleted creates an income.deleted event
func IncomeDeleted(id int32) Event {
	return NewEvent(EventTypeDeleted, EntityTypeIncome, map[string]int32{"id": id})
}

// GoalCompleted creates a goal.completed event
func GoalCompleted(payload interface{}) Event {
	return NewEvent(EventTypeCompleted, EntityTypeGoal, payload)
}

// snapshotSize caps the alerts carried in the connect snapshot
const snapshotSize = 5

// AlertSnapshotPayload primes a freshly connected dashboard's alert badge
type AlertSnapshotPayload struct {
	UnreadCount int            `json:"unreadCount"`
	Latest      []AlertPayload `json:"latest"`
}

// AlertSnapshot creates an alert.snapshot event from the user's unread alerts, newest first
func AlertSnapshot(unread []*domain.Alert) Event {
	latest := make([]AlertPayload, 0, min(len(unread), snapshotSize))
	for _, a := range unread[:min(len(unread), snapshotSize)] {
		latest = append(latest, NewAlertPayload(a))
	}
	return NewEvent(EventTypeSnapshot, EntityTypeAlert, AlertSnapshotPayload{
		UnreadCount: len(unread),
		Latest:      latest,
	})
}

// SubscriptionUpdated acknowledges a subscription request with the resulting entity set
func SubscriptionUpdated(entities []EntityType) Event {
	return NewEvent(EventTypeUpdated, EntityTypeSubscription, map[string][]EntityType{"entities": entities})
}

// SubscriptionRejected reports why a subscription request was not applied
func SubscriptionRejected(reason string) Event {
	return NewEvent(EventTypeRejected, EntityTypeSubscription, map[string]string{"error": reason})
}
