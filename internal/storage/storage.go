package storage

import (
	"context"
	"errors"

	"notifyScope/internal/model"
)

// ErrNotFound is returned by lookups when no matching record exists.
var ErrNotFound = errors.New("storage: not found")

// DappDirectory resolves a program's on-chain address to its dapp identity.
type DappDirectory interface {
	FindDapp(ctx context.Context, address string) (model.Dapp, error)
}

// TemplateStore resolves a (dapp, event name) pair to its content template.
type TemplateStore interface {
	FindTemplate(ctx context.Context, dappID, eventName string) (model.ContentTemplate, error)
}

// NotificationStore persists rendered notifications. InsertNotification
// returns inserted=false when the notification's event key already exists;
// the caller must treat that as a duplicate delivery, not an error.
type NotificationStore interface {
	InsertNotification(ctx context.Context, n model.Notification) (model.Notification, bool, error)
	ListNotifications(ctx context.Context, offset, limit int) ([]model.Notification, error)
}
