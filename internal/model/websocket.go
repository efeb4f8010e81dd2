package model

// WebSocket message types
const (
	WSMessageTypeStage    = "stage"
	WSMessageTypeProgress = "progress"
	WSMessageTypeComplete = "complete"
	WSMessageTypeError    = "error"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WSMessage is the minimal envelope exchanged with clients
type WSMessage struct {
	Type string `json:"type"`
}

// WSStageMessage announces a wizard stage change
type WSStageMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Stage     Stage  `json:"stage"`
}

// WSProgressMessage reports progress of a blocking action (render, download)
type WSProgressMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Step      string `json:"step"`
	Progress  int    `json:"progress"`
}

// WSCompleteMessage announces a finished render
type WSCompleteMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Result    interface{} `json:"result"`
}

// WSErrorMessage surfaces a failure to subscribers
type WSErrorMessage struct {
	Type      string  `json:"type"`
	SessionID string  `json:"sessionId"`
	Error     WSError `json:"error"`
}

// WSError carries the error code and message
type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
