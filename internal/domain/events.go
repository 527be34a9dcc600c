package domain

import "time"

// EventKind names a change on the social graph.
type EventKind string

const (
	EventRequestCreated EventKind = "request_created"
	EventRequestRemoved EventKind = "request_removed"
	EventFriendAdded    EventKind = "friend_added"
	EventSignedOut      EventKind = "signed_out"
)

// ChangeEvent is pushed to the subscribers of UserID.
type ChangeEvent struct {
	Kind    EventKind      `json:"kind"`
	UserID  string         `json:"userId"`
	Request *FriendRequest `json:"request,omitempty"`
	Friend  *Friend        `json:"friend,omitempty"`
	At      time.Time      `json:"at"`
}

// SocialState is the reduced view of a student's friends and incoming requests.
type SocialState struct {
	UserID   string          `json:"userId"`
	Friends  []Friend        `json:"friends"`
	Requests []FriendRequest `json:"requests"`
}
