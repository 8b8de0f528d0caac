package collab

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"lembarkolab/pkg/logger"
	"lembarkolab/socket"
)

// Status is the session's connection state. It exists so callers can react
// to a channel that never came up instead of presence silently not working.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusSubscribed
)

var ErrNotSubscribed = errors.New("channel is not subscribed")

// LocalUser identifies the participant this session tracks on the topic.
type LocalUser struct {
	ID     string
	Name   string
	Avatar string
}

// Collaborator is a participant visible on the document's topic. Cursor and
// BlockIndex are transient: they arrive as broadcasts, not presence, so a
// presence sync clears them.
type Collaborator struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Avatar     string         `json:"avatar,omitempty"`
	Color      string         `json:"color"`
	Status     string         `json:"status"`
	Cursor     *socket.Cursor `json:"cursor,omitempty"`
	BlockIndex *int           `json:"blockIndex,omitempty"`
	LastActive int64          `json:"lastActive"`
}

// Session is one user's live connection to one document's collaboration
// topic. It owns the channel handle, the collaborator list, and the cursor
// throttler, so nothing about the session lives in process globals.
//
// Join and Leave must not be called concurrently with each other; everything
// else is safe from any goroutine.
type Session struct {
	baseURL  string
	user     LocalUser
	throttle *CursorThrottler

	mu            sync.Mutex
	conn          *websocket.Conn
	status        Status
	collaborators map[string]*Collaborator
	done          chan struct{}

	// Optional callbacks, invoked from the read loop.
	OnSync      func([]Collaborator)
	OnJoin      func(Collaborator)
	OnLeave     func(userID string)
	OnBroadcast func(event string, payload json.RawMessage)
}

// NewSession prepares a session against a hub base URL (e.g. ws://host:8080).
func NewSession(baseURL string, user LocalUser) *Session {
	return &Session{
		baseURL:       baseURL,
		user:          user,
		throttle:      NewCursorThrottler(),
		collaborators: make(map[string]*Collaborator),
	}
}

// Join subscribes to the document's topic and, only once the hub has
// confirmed the subscription, announces local presence. The context bounds
// the whole handshake; a hub that never acks is an error here, not a
// silently absent feature.
func (s *Session) Join(ctx context.Context, documentID string) error {
	return s.joinTopic(ctx, socket.DocTopic(documentID))
}

// joinTopic joins an arbitrary topic, e.g. a user's notification topic.
func (s *Session) joinTopic(ctx context.Context, topic string) error {
	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		return errors.New("session already joined")
	}
	s.status = StatusConnecting
	s.mu.Unlock()

	conn, err := s.dial(ctx, topic)
	if err != nil {
		s.setStatus(StatusDisconnected)
		return err
	}

	if err := awaitSubscribed(ctx, conn, topic); err != nil {
		conn.Close()
		s.setStatus(StatusDisconnected)
		return err
	}

	// Announce presence. Color is picked fresh per session.
	state := socket.PresenceState{
		UserID:     s.user.ID,
		Name:       s.user.Name,
		Avatar:     s.user.Avatar,
		Color:      randomColor(),
		Status:     "online",
		LastActive: time.Now().UnixMilli(),
	}
	payload, _ := json.Marshal(state)
	raw, _ := json.Marshal(socket.Message{Type: socket.TrackType, Payload: payload})
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		conn.Close()
		s.setStatus(StatusDisconnected)
		return err
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.conn = conn
	s.status = StatusSubscribed
	s.done = done
	s.mu.Unlock()

	go s.readLoop(conn, done)
	return nil
}

func (s *Session) dial(ctx context.Context, topic string) (*websocket.Conn, error) {
	u := s.baseURL + "/ws?topic=" + url.QueryEscape(topic) + "&user_id=" + url.QueryEscape(s.user.ID)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	return conn, err
}

// awaitSubscribed reads until the hub acks the topic subscription.
func awaitSubscribed(ctx context.Context, conn *websocket.Conn, topic string) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(5 * time.Second)
	}
	conn.SetReadDeadline(deadline)
	defer conn.SetReadDeadline(time.Time{})

	for {
		var msg socket.Message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		if msg.Type == socket.SubscribedType && msg.Topic == topic {
			return nil
		}
	}
}

// Leave unsubscribes and discards every collaborator. Safe to call twice.
func (s *Session) Leave() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.status = StatusDisconnected
	s.collaborators = make(map[string]*Collaborator)
	done := s.done
	s.done = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if done != nil {
		<-done
	}
}

// Status reports the session's connection state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Collaborators returns a copy of the current collaborator list.
func (s *Session) Collaborators() []Collaborator {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Collaborator, 0, len(s.collaborators))
	for _, c := range s.collaborators {
		out = append(out, *c)
	}
	return out
}

// Collaborator looks up one participant by user id.
func (s *Session) Collaborator(userID string) (Collaborator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collaborators[userID]
	if !ok {
		return Collaborator{}, false
	}
	return *c, true
}

// OfferCursor feeds one raw pointer sample through the throttler. At most
// one broadcast goes out per 50ms window; rejected samples are dropped, not
// queued. Returns whether the sample was broadcast.
func (s *Session) OfferCursor(cursor *socket.Cursor, blockIndex *int) bool {
	if !s.throttle.Allow() {
		return false
	}
	return s.sendCursor(cursor, blockIndex) == nil
}

func (s *Session) sendCursor(cursor *socket.Cursor, blockIndex *int) error {
	s.mu.Lock()
	conn := s.conn
	subscribed := s.status == StatusSubscribed
	s.mu.Unlock()
	if !subscribed || conn == nil {
		return ErrNotSubscribed
	}

	payload, _ := json.Marshal(socket.CursorMove{UserID: s.user.ID, Cursor: cursor, BlockIndex: blockIndex})
	raw, _ := json.Marshal(socket.Message{Type: socket.BroadcastType, Event: socket.EventCursorMove, Payload: payload})
	return conn.WriteMessage(websocket.TextMessage, raw)
}

func (s *Session) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		var msg socket.Message
		if err := conn.ReadJSON(&msg); err != nil {
			s.setStatus(StatusDisconnected)
			return
		}
		s.handle(msg)
	}
}

func (s *Session) handle(msg socket.Message) {
	switch msg.Type {
	case socket.PresenceSyncType:
		var snap socket.PresenceSnapshot
		if err := json.Unmarshal(msg.Payload, &snap); err != nil {
			logger.Sugar.Errorf("Bad presence snapshot: %v", err)
			return
		}
		s.applySync(snap)

	case socket.PresenceJoinType:
		var state socket.PresenceState
		if err := json.Unmarshal(msg.Payload, &state); err != nil {
			return
		}
		c := fromPresence(state)
		s.mu.Lock()
		s.collaborators[state.UserID] = &c
		s.mu.Unlock()
		if s.OnJoin != nil {
			s.OnJoin(c)
		}

	case socket.PresenceLeaveType:
		var leave socket.PresenceLeave
		if err := json.Unmarshal(msg.Payload, &leave); err != nil {
			return
		}
		s.mu.Lock()
		delete(s.collaborators, leave.UserID)
		s.mu.Unlock()
		if s.OnLeave != nil {
			s.OnLeave(leave.UserID)
		}

	case socket.BroadcastType:
		if msg.Event == socket.EventCursorMove {
			var move socket.CursorMove
			if err := json.Unmarshal(msg.Payload, &move); err != nil {
				return
			}
			s.applyCursorMove(move)
		}
		if s.OnBroadcast != nil {
			s.OnBroadcast(msg.Event, msg.Payload)
		}
	}
}

// applySync replaces the entire collaborator list from the hub's snapshot.
// First value wins per key. Cursors known only locally do not survive a
// sync: the snapshot is authoritative and carries none.
func (s *Session) applySync(snap socket.PresenceSnapshot) {
	next := make(map[string]*Collaborator, len(snap))
	for userID, states := range snap {
		if len(states) == 0 {
			continue
		}
		c := fromPresence(states[0])
		c.ID = userID
		next[userID] = &c
	}

	s.mu.Lock()
	s.collaborators = next
	s.mu.Unlock()

	if s.OnSync != nil {
		s.OnSync(s.Collaborators())
	}
}

// applyCursorMove patches exactly the sender's cursor fields. A move from a
// user who is not currently tracked is dropped.
func (s *Session) applyCursorMove(move socket.CursorMove) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collaborators[move.UserID]
	if !ok {
		return
	}
	c.Cursor = move.Cursor
	c.BlockIndex = move.BlockIndex
	c.LastActive = time.Now().UnixMilli()
}

func (s *Session) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

func fromPresence(state socket.PresenceState) Collaborator {
	return Collaborator{
		ID:         state.UserID,
		Name:       state.Name,
		Avatar:     state.Avatar,
		Color:      state.Color,
		Status:     state.Status,
		LastActive: state.LastActive,
	}
}
