package socket

import (
	"encoding/json"
	"sync"

	"lembarkolab/pkg/logger"
)

// Hub routes presence and broadcast traffic between clients subscribed to
// named topics. It is pure transport: nothing that passes through it is
// persisted, delivery is best-effort, and a topic disappears when its last
// subscriber leaves.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	Inbound    chan Message

	mu       sync.Mutex
	topics   map[string]map[*Client]bool
	presence map[string]map[string]PresenceState // topic -> userID -> state
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Inbound:    make(chan Message),
		topics:     make(map[string]map[*Client]bool),
		presence:   make(map[string]map[string]PresenceState),
	}
}

// Run is the hub's event loop. Start it once in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.topics[client.Topic] == nil {
				h.topics[client.Topic] = make(map[*Client]bool)
				h.presence[client.Topic] = make(map[string]PresenceState)
			}
			h.topics[client.Topic][client] = true
			h.mu.Unlock()

			// Ack the subscription. Clients must not track before this.
			ack, _ := json.Marshal(Message{Type: SubscribedType, Topic: client.Topic})
			client.Send <- ack

			// Late joiners get the current snapshot right away.
			h.sendSyncTo(client)

		case client := <-h.Unregister:
			h.mu.Lock()
			topic := client.Topic
			hadTracked := false
			if _, ok := h.topics[topic][client]; ok {
				delete(h.topics[topic], client)
				close(client.Send)
				if _, tracked := h.presence[topic][client.UserID]; tracked {
					// Presence is keyed by user id alone; a second tab of the
					// same user overwrote the first entry, so the last close
					// removes it for both.
					delete(h.presence[topic], client.UserID)
					hadTracked = true
				}
				if len(h.topics[topic]) == 0 {
					delete(h.topics, topic)
					delete(h.presence, topic)
					logger.Sugar.Infof("Closed empty topic: %s", topic)
				}
			}
			h.mu.Unlock()

			if hadTracked {
				leave, _ := json.Marshal(PresenceLeave{UserID: client.UserID})
				h.fanOut(Message{Type: PresenceLeaveType, Topic: topic, UserID: client.UserID, Payload: leave}, "")
				h.broadcastSync(topic)
			}

		case msg := <-h.Inbound:
			switch msg.Type {
			case TrackType:
				h.handleTrack(msg)
			case BroadcastType:
				// Fan out to everyone on the topic except the sender.
				h.fanOut(msg, msg.UserID)
			}
		}
	}
}

// handleTrack stores a participant's presence state and tells the topic.
func (h *Hub) handleTrack(msg Message) {
	var state PresenceState
	if err := json.Unmarshal(msg.Payload, &state); err != nil {
		logger.Sugar.Errorf("Bad track payload from %s: %v", msg.UserID, err)
		return
	}
	state.UserID = msg.UserID // server-authoritative, never trust the payload

	h.mu.Lock()
	if h.presence[msg.Topic] == nil {
		h.mu.Unlock()
		return
	}
	h.presence[msg.Topic][msg.UserID] = state
	h.mu.Unlock()

	joined, _ := json.Marshal(state)
	h.fanOut(Message{Type: PresenceJoinType, Topic: msg.Topic, UserID: msg.UserID, Payload: joined}, msg.UserID)
	h.broadcastSync(msg.Topic)
}

// snapshot builds the authoritative presence snapshot for a topic.
func (h *Hub) snapshot(topic string) PresenceSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	snap := make(PresenceSnapshot, len(h.presence[topic]))
	for userID, state := range h.presence[topic] {
		snap[userID] = []PresenceState{state}
	}
	return snap
}

func (h *Hub) broadcastSync(topic string) {
	payload, err := json.Marshal(h.snapshot(topic))
	if err != nil {
		logger.Sugar.Errorf("Error marshalling presence snapshot: %v", err)
		return
	}
	h.fanOut(Message{Type: PresenceSyncType, Topic: topic, Payload: payload}, "")
}

func (h *Hub) sendSyncTo(client *Client) {
	payload, err := json.Marshal(h.snapshot(client.Topic))
	if err != nil {
		logger.Sugar.Errorf("Error marshalling presence snapshot: %v", err)
		return
	}
	raw, _ := json.Marshal(Message{Type: PresenceSyncType, Topic: client.Topic, Payload: payload})
	select {
	case client.Send <- raw:
	default:
		logger.Sugar.Warnf("Client %s's send buffer was full during initial sync.", client.UserID)
	}
}

// fanOut delivers a message to every subscriber of its topic except
// excludeUserID. Clients with a full send buffer are unregistered so a slow
// reader cannot stall the hub.
func (h *Hub) fanOut(msg Message, excludeUserID string) {
	raw, err := json.Marshal(msg)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
		return
	}

	h.mu.Lock()
	recipients := make([]*Client, 0, len(h.topics[msg.Topic]))
	for client := range h.topics[msg.Topic] {
		if excludeUserID == "" || client.UserID != excludeUserID {
			recipients = append(recipients, client)
		}
	}
	h.mu.Unlock()

	for _, client := range recipients {
		select {
		case client.Send <- raw:
		default:
			logger.Sugar.Warnf("Client %s's send buffer is full. Unregistering.", client.UserID)
			go func(c *Client) { h.Unregister <- c }(client)
		}
	}
}

// Presence returns a copy of the tracked states on a topic, for the REST
// surface to report who is currently in a document.
func (h *Hub) Presence(topic string) []PresenceState {
	h.mu.Lock()
	defer h.mu.Unlock()
	states := make([]PresenceState, 0, len(h.presence[topic]))
	for _, state := range h.presence[topic] {
		states = append(states, state)
	}
	return states
}
