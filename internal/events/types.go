package events

import (
	"github.com/stormhall/qw-bot-discord/internal/domain/contest"
)

// EventType represents the type of broadcast event
type EventType string

const (
	// EventTypeContestCreated fires when a contest card is first posted
	EventTypeContestCreated EventType = "contest.created"

	// EventTypeContestUpdated fires on every committed mutation of a card
	EventTypeContestUpdated EventType = "contest.updated"

	// EventTypeContestResolved fires when a contest reaches its outcome
	EventTypeContestResolved EventType = "contest.resolved"

	// EventTypeStoryPointsChanged fires when the pool or a balance moves
	EventTypeStoryPointsChanged EventType = "storypoints.changed"
)

// Event is the base interface for all broadcast events
type Event interface {
	GetType() EventType
}

// ContestEvent carries the committed state of a contest record. Every
// viewer re-renders from the broadcast copy, never from local edits.
type ContestEvent struct {
	Type   EventType
	Record *contest.Record
}

// GetType implements Event
func (e *ContestEvent) GetType() EventType { return e.Type }

// StoryPointsEvent reports a pool or balance change
type StoryPointsEvent struct {
	// PartyID is empty for shared-pool changes
	PartyID string
	Points  int
}

// GetType implements Event
func (e *StoryPointsEvent) GetType() EventType { return EventTypeStoryPointsChanged }
