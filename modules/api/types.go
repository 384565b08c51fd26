package api

import "encoding/json"

// Envelope is the uniform response shape of every REST endpoint.
// Failures never carry Data; batch mutations add AffectedCount.
type Envelope struct {
	Success       bool   `json:"success"`
	Data          any    `json:"data,omitempty"`
	Message       string `json:"message"`
	AffectedCount *int   `json:"affectedCount,omitempty"`
}

// clientFrame is one message from a websocket console client.
type clientFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// serverFrame is one message to a websocket console client.
type serverFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

// keywordPayload carries the set_keyword frame body.
type keywordPayload struct {
	Keyword string `json:"keyword"`
}

// idPayload carries frames addressing one task.
type idPayload struct {
	ID string `json:"id"`
}

// statusPayload carries the batch_status frame body.
type statusPayload struct {
	Status string `json:"status"`
}

// grantBody is the POST /photos/:id/grants request body.
type grantBody struct {
	GranteeID  string `json:"grantee_id"`
	Level      string `json:"level"`
	TTLSeconds int64  `json:"ttl_seconds,omitempty"`
}

// verifyBody is the POST /captcha/verify request body.
type verifyBody struct {
	ChallengeID string `json:"challenge_id"`
	Answer      int    `json:"answer"`
}
