package ws

// Inbound action types and the single outbound event type.
const (
	TypeJoinRoom    = "JoinRoom"    // join a room's broadcast channel
	TypeLeaveRoom   = "LeaveRoom"   // leave the current room
	TypeSendMessage = "SendMessage" // chat message to a room

	TypeReceiveMessage = "ReceiveMessage" // the only event pushed to clients
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type JoinPayload struct {
	RoomName string `json:"room_name"`
	Username string `json:"username"`
}

type LeavePayload struct {
	RoomName string `json:"room_name"`
	Username string `json:"username"`
}

type ChatPayload struct {
	RoomName string `json:"room_name"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// ReceivePayload is the fan-out event body. User is null for private
// failure events addressed to a single caller.
type ReceivePayload struct {
	User    *string `json:"user"`
	Message string  `json:"message"`
}

func receiveEvent(user *string, text string) Message {
	return Message{
		Type:    TypeReceiveMessage,
		Payload: ReceivePayload{User: user, Message: text},
	}
}
