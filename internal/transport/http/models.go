package http

type CreateRoomRequest struct {
	RoomName string `json:"room_name"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
