package server

import (
	"time"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/ranking"
)

type CreateSessionRequest struct {
	Metadata map[string]string `json:"metadata" validate:"omitempty,max=32,dive,keys,required,max=64,endkeys,max=512"`
}

type QueryRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type SelectionRequest struct {
	Field string `json:"field" validate:"required,oneof=budget location amenities brand lifestyle"`
	Value string `json:"value" validate:"required,max=200"`
}

type SessionResponse struct {
	SessionId    string                   `json:"sessionId"`
	Status       core.SessionStatus       `json:"status"`
	Metadata     map[string]string        `json:"metadata"`
	StartedAt    time.Time                `json:"startedAt"`
	LastActiveAt time.Time                `json:"lastActiveAt"`
	EndedAt      *time.Time               `json:"endedAt,omitempty"`
	Selections   core.Selections          `json:"selections"`
	Pending      []core.PendingSuggestion `json:"pending,omitempty"`
	Turns        int                      `json:"turns"`
}

type BadgeResponse struct {
	Position int            `json:"position"`
	Tier     core.BadgeTier `json:"tier"`
}

type ResidenceBadgesResponse struct {
	ResidenceId string          `json:"residenceId"`
	Badges      []ranking.Badge `json:"badges"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func toSessionResponse(s *core.Session) SessionResponse {
	resp := SessionResponse{
		SessionId:    s.Id,
		Status:       s.Status,
		Metadata:     s.Metadata,
		StartedAt:    s.CreatedAt,
		LastActiveAt: s.LastActiveAt,
		Selections:   s.Selections,
		Pending:      s.Pending,
		Turns:        s.Turns,
	}
	if resp.Metadata == nil {
		resp.Metadata = map[string]string{}
	}
	if !s.EndedAt.IsZero() {
		ended := s.EndedAt
		resp.EndedAt = &ended
	}
	return resp
}
