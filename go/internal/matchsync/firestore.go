package matchsync

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

const (
	matchesCollection = "Matches"
	eventsCollection  = "events"
)

// matchDocuments is the part of Firestore the publisher writes to.
type matchDocuments interface {
	SetMatch(ctx context.Context, matchID string, data map[string]interface{}) error
	UpdateMatch(ctx context.Context, matchID string, updates []firestore.Update) error
	DeleteMatch(ctx context.Context, matchID string) error
	SetEvent(ctx context.Context, matchID, eventID string, data map[string]interface{}) error
	DeleteEvent(ctx context.Context, matchID, eventID string) error
}

type firestoreDocuments struct {
	client *firestore.Client
}

func (d firestoreDocuments) match(matchID string) *firestore.DocumentRef {
	return d.client.Collection(matchesCollection).Doc(matchID)
}

func (d firestoreDocuments) SetMatch(ctx context.Context, matchID string, data map[string]interface{}) error {
	_, err := d.match(matchID).Set(ctx, data)
	return err
}

func (d firestoreDocuments) UpdateMatch(ctx context.Context, matchID string, updates []firestore.Update) error {
	_, err := d.match(matchID).Update(ctx, updates)
	return err
}

// DeleteMatch removes the match document and its events. Firestore does not
// delete sub-collections with their parent.
func (d firestoreDocuments) DeleteMatch(ctx context.Context, matchID string) error {
	doc := d.match(matchID)
	events, err := doc.Collection(eventsCollection).Documents(ctx).GetAll()
	if err != nil {
		return err
	}
	for _, event := range events {
		if _, err := event.Ref.Delete(ctx); err != nil {
			return err
		}
	}
	_, err = doc.Delete(ctx)
	return err
}

func (d firestoreDocuments) SetEvent(ctx context.Context, matchID, eventID string, data map[string]interface{}) error {
	_, err := d.match(matchID).Collection(eventsCollection).Doc(eventID).Set(ctx, data)
	return err
}

func (d firestoreDocuments) DeleteEvent(ctx context.Context, matchID, eventID string) error {
	_, err := d.match(matchID).Collection(eventsCollection).Doc(eventID).Delete(ctx)
	return err
}

// FirestorePublisher mirrors each match into Firestore for live clients:
// Matches/{matchId} holds the latest snapshot and Matches/{matchId}/events
// holds one document per logged event. Undoing a command deletes its event
// document; purging a match deletes both.
type FirestorePublisher struct {
	docs matchDocuments
}

func NewFirestorePublisher(client *firestore.Client) *FirestorePublisher {
	return &FirestorePublisher{docs: firestoreDocuments{client: client}}
}

func (p *FirestorePublisher) Name() string { return "firestore" }

func (p *FirestorePublisher) Publish(ctx context.Context, event SyncEvent) error {
	matchID := event.MatchID.String()

	switch event.Action {
	case ActionMatchPurged:
		if err := p.docs.DeleteMatch(ctx, matchID); err != nil && grpcstatus.Code(err) != codes.NotFound {
			return fmt.Errorf("delete match document: %w", err)
		}
		return nil
	case ActionStatusChanged, ActionMatchEnded:
		updates := []firestore.Update{
			{Path: "status", Value: string(event.Status)},
			{Path: "sequence", Value: int64(event.Sequence)},
			{Path: "updatedAt", Value: event.CreatedAt},
		}
		if event.Action == ActionMatchEnded {
			updates = append(updates, firestore.Update{Path: "ended", Value: true})
		}
		err := p.docs.UpdateMatch(ctx, matchID, updates)
		if err == nil {
			return nil
		}
		if grpcstatus.Code(err) != codes.NotFound {
			return fmt.Errorf("update match status: %w", err)
		}
		if len(event.Snapshot) == 0 {
			return nil
		}
	}

	doc, err := matchDocument(event)
	if err != nil {
		return err
	}
	if err := p.docs.SetMatch(ctx, matchID, doc); err != nil {
		return fmt.Errorf("write match document: %w", err)
	}

	if event.EventID == nil {
		return nil
	}
	eventID := event.EventID.String()
	switch event.Action {
	case ActionCommandUndone:
		if err := p.docs.DeleteEvent(ctx, matchID, eventID); err != nil && grpcstatus.Code(err) != codes.NotFound {
			return fmt.Errorf("delete event document: %w", err)
		}
	case ActionCommandExecuted, ActionCommandRedone:
		data, err := decodeObject(event.Event)
		if err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		if data == nil {
			return nil
		}
		data["sequence"] = int64(event.Sequence)
		if err := p.docs.SetEvent(ctx, matchID, eventID, data); err != nil {
			return fmt.Errorf("write event document: %w", err)
		}
	}
	return nil
}

func matchDocument(event SyncEvent) (map[string]interface{}, error) {
	snapshot, err := decodeObject(event.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return map[string]interface{}{
		"matchId":   event.MatchID.String(),
		"sport":     string(event.Sport),
		"status":    string(event.Status),
		"sequence":  int64(event.Sequence),
		"updatedAt": event.CreatedAt,
		"snapshot":  snapshot,
	}, nil
}

func decodeObject(raw json.RawMessage) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
