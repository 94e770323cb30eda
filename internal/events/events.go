// Package events 定義登錄簿的領域事件，以及將事件送往 Redis Streams 的發佈者。
// 未啟用事件時使用 Nop，發佈失敗只記錄不影響主要操作。
package events

import (
	"context"
	"time"
)

// Event types
const (
	AccountCreated   = "account.created"
	AccountDeleted   = "account.deleted"
	AccountsMerged   = "account.merged"
	PaymentCompleted = "payment.completed"
	RegistryCreated  = "registry.created"
	RegistriesMerged = "registry.merged"
	IDsRebuilt       = "registry.ids_rebuilt"
)

// Stream name
const RegistryEventsStream = "registry.events"

// Event 為送出的事件封套。
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Registry  string    `json:"registry"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type AccountCreatedEvent struct {
	AccountID int     `json:"accountId"`
	Name      string  `json:"name"`
	Funds     float64 `json:"funds"`
}

type AccountDeletedEvent struct {
	AccountID int `json:"accountId"`
}

type AccountsMergedEvent struct {
	KeptID    int     `json:"keptId"`
	RemovedID int     `json:"removedId"`
	Funds     float64 `json:"funds"`
}

type PaymentCompletedEvent struct {
	PayerID int     `json:"payerId"`
	PayeeID int     `json:"payeeId"`
	Amount  float64 `json:"amount"`
}

type RegistriesMergedEvent struct {
	Sources  []string `json:"sources"`
	Accounts int      `json:"accounts"`
}

type IDsRebuiltEvent struct {
	NextID   int   `json:"nextId"`
	FreedIDs []int `json:"freedIds"`
}

// Publisher 送出事件。
type Publisher interface {
	Publish(ctx context.Context, registry, eventType string, data any) error
}

// Nop 丟棄所有事件。
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
