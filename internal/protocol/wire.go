package protocol

type moveMessage struct {
	Type     Type `json:"type"`
	Position *int `json:"position"`
}

type chatMessage struct {
	Type    Type    `json:"type"`
	Message *string `json:"message"`
	Sender  string  `json:"sender,omitempty"`
}

type connectionStatusMessage struct {
	Type   Type   `json:"type"`
	Status string `json:"status"`
	Code   int    `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type gameStateMessage struct {
	Type          Type   `json:"type"`
	Game          *Game  `json:"game"`
	Disconnection bool   `json:"disconnection,omitempty"`
	Message       string `json:"message,omitempty"`
}

type errorMessage struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

type playerMessage struct {
	Type   Type   `json:"type"`
	Player string `json:"player"`
}
