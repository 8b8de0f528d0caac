package collab

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/gorilla/websocket"

	"lembarkolab/socket"
)

// SendInvite opens a transient channel to the receiver's notification topic,
// waits for the subscription ack, sends exactly one collab-invite broadcast
// and releases the channel. Fire-and-forget: a receiver who is offline never
// sees the invite and no retry happens here.
func SendInvite(ctx context.Context, baseURL string, sender LocalUser, receiverID string, payload socket.InvitePayload) error {
	topic := socket.NotificationTopic(receiverID)
	u := baseURL + "/ws?topic=" + url.QueryEscape(topic) + "&user_id=" + url.QueryEscape(sender.ID)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := awaitSubscribed(ctx, conn, topic); err != nil {
		return err
	}

	body, _ := json.Marshal(payload)
	raw, _ := json.Marshal(socket.Message{Type: socket.BroadcastType, Event: socket.EventCollabInvite, Payload: body})
	return conn.WriteMessage(websocket.TextMessage, raw)
}
