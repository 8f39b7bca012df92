// Package backend defines the capability the resilience layer consumes from
// the hosted data service. The concrete transport lives elsewhere; here the
// backend is three operations and a change stream, and every failure it
// returns is expected to be classifiable by the error taxonomy.
package backend

import (
	"context"
	"encoding/json"

	"github.com/pointme/resilience/internal/core/domain"
)

// Mutation is one locally originated write.
type Mutation struct {
	// Kind tags the mutation type, e.g. "booking.create".
	Kind    string
	Payload json.RawMessage
}

// Subscription is a live handle on a collection's change stream. Events stop
// and the channel closes after Unsubscribe.
type Subscription interface {
	Events() <-chan domain.ChangeEvent
	Unsubscribe()
}

// Backend is the opaque collaborator.
type Backend interface {
	// Read performs a point read.
	Read(ctx context.Context, key string) (json.RawMessage, error)

	// Write applies a mutation. Failures come back as classifiable errors;
	// conflict resolution against server state is the server's job.
	Write(ctx context.Context, m Mutation) error

	// List returns the authoritative current contents of a collection,
	// used to seed a reconciled collection on subscription start.
	List(ctx context.Context, topic string) ([]domain.Record, error)

	// Subscribe opens the change stream for a collection topic.
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}
