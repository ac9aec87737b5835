package server

// BrowseCommand is a message sent by a /ws/browse client.
type BrowseCommand struct {
	Action string `json:"action" example:"navigate"`
	Input  string `json:"input,omitempty" example:"example.com"`
}

// PageFrame is sent back for every successful command.
type PageFrame struct {
	Action      string `json:"action"`
	Display     string `json:"display"`
	Target      string `json:"target"`
	Gateway     string `json:"gateway"`
	Title       string `json:"title"`
	StatusCode  int    `json:"status"`
	OK          bool   `json:"ok"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"no earlier page"`
}
