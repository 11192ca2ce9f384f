package domain

import "time"

// Reserved tags are resolved by lookup adapters instead of catalog replies.
const (
	TagTime      = "time"
	TagWeather   = "weather"
	TagGreeting  = "greeting"
	TagSmalltalk = "smalltalk"
)

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Response  string   `json:"response"`
	SessionID string   `json:"session_id,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

type Intent struct {
	Tag       string   `json:"tag" yaml:"tag"`
	Patterns  []string `json:"patterns" yaml:"patterns"`
	Responses []string `json:"responses" yaml:"responses"`
}

type Classification struct {
	Tag        string
	Confidence float64
}

// TurnEvent is published after every resolved turn.
type TurnEvent struct {
	TurnID           string    `json:"turn_id"`
	SessionID        string    `json:"session_id"`
	Tags             []string  `json:"tags"`
	Overridden       bool      `json:"overridden"`
	Rule             string    `json:"rule,omitempty"`
	ContextTriggered bool      `json:"context_triggered"`
	Reply            string    `json:"reply"`
	At               time.Time `json:"at"`
}
