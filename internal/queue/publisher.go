package queue

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exchanges the service publishes to. Every name listed here must be
// handed to NewRabbit so it is declared before the first publish; an
// undeclared exchange closes the channel on first use.
const (
	ExchangeAuth  = "auth.events"
	ExchangeNotes = "notes.events"
)

type Publisher interface {
	Publish(ctx context.Context, exchange, key string, event any, reqID string) error
	Close() error
}

// NoopPub stands in when no broker is configured (RABBIT_URL empty, tests).
type NoopPub struct{}

func NewNoop() Publisher { return NoopPub{} }

func (NoopPub) Publish(ctx context.Context, exchange, key string, event any, reqID string) error {
	return nil
}
func (NoopPub) Close() error { return nil }

type UserRegistered struct {
	UserID primitive.ObjectID `json:"user_id"`
	Email  string             `json:"email"`
	Name   string             `json:"name"`
}

type UserLoggedIn struct {
	UserID primitive.ObjectID `json:"user_id"`
	Email  string             `json:"email"`
	Method string             `json:"method"` // "local" | "google" | "github"
}

type ProviderLinked struct {
	UserID   primitive.ObjectID `json:"user_id"`
	Provider string             `json:"provider"`
}

type NoteCreated struct {
	NoteID primitive.ObjectID `json:"note_id"`
	Author primitive.ObjectID `json:"author"`
}
