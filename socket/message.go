package socket

import "encoding/json"

// Message types exchanged over a channel. SUBSCRIBED is the server's ack
// after a client registers on a topic; clients may only send TRACK and
// BROADCAST, everything else originates from the hub.
const (
	SubscribedType    = "SUBSCRIBED"     // Server confirmed the subscription
	TrackType         = "TRACK"          // Client announces its presence state
	PresenceSyncType  = "PRESENCE_SYNC"  // Authoritative presence snapshot
	PresenceJoinType  = "PRESENCE_JOIN"  // A participant started tracking
	PresenceLeaveType = "PRESENCE_LEAVE" // A participant left the topic
	BroadcastType     = "BROADCAST"      // Fire-and-forget event fan-out
)

// Broadcast event names.
const (
	EventCursorMove   = "cursor-move"
	EventCollabInvite = "collab-invite"
)

// DocTopic is the channel name for a document's collaboration session.
func DocTopic(documentID string) string {
	return "doc:" + documentID
}

// NotificationTopic is a user's personal channel for one-shot notifications.
func NotificationTopic(userID string) string {
	return "user-notifications:" + userID
}

// Message is the wire envelope. Event is only set for BROADCAST messages.
type Message struct {
	Type    string          `json:"type"`
	Topic   string          `json:"topic"`
	UserID  string          `json:"user_id"`
	Event   string          `json:"event,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PresenceState is the payload a participant tracks on a topic. It carries
// no cursor: cursors travel as broadcasts and are deliberately absent from
// presence snapshots.
type PresenceState struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar,omitempty"`
	Color      string `json:"color"`
	Status     string `json:"status"`
	LastActive int64  `json:"last_active"`
}

// PresenceSnapshot maps user id to the tracked states under that key. A key
// normally holds exactly one state; consumers take the first when a
// duplicate slips in.
type PresenceSnapshot map[string][]PresenceState

// Cursor is a pointer position: x as a fraction of the container width,
// y as a pixel offset from the container top.
type Cursor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CursorMove is the cursor-move broadcast payload.
type CursorMove struct {
	UserID     string  `json:"userId"`
	Cursor     *Cursor `json:"cursor,omitempty"`
	BlockIndex *int    `json:"blockIndex,omitempty"`
}

// InvitePayload is the collab-invite broadcast payload sent to a user's
// notification topic.
type InvitePayload struct {
	DocID        string `json:"docId"`
	DocTitle     string `json:"docTitle"`
	SenderName   string `json:"senderName"`
	SenderAvatar string `json:"senderAvatar,omitempty"`
	URL          string `json:"url"`
}

// PresenceLeave is the PRESENCE_LEAVE payload.
type PresenceLeave struct {
	UserID string `json:"user_id"`
}
