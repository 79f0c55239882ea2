// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/concierge/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Responder implements ai.Responder using OpenAI-compatible chat APIs.
// The model only rephrases facts computed by the matcher; it never chooses residences.
type Responder struct {
	client      llms.Model
	temperature float64
	config      *ai.Config
	logger      *slog.Logger
}

// newResponder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newResponder(config *ai.Config) (*Responder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return &Responder{
		client:      client,
		temperature: config.Temperature,
		config:      config,
		logger:      slog.Default().With("component", "openai-responder"),
	}, nil
}

// NewResponder creates a new responder using the provided configuration.
//
// Returns ai.Responder interface to enforce abstraction.
func NewResponder(config *ai.Config) (ai.Responder, error) {
	return newResponder(config)
}

// Respond asks the model to phrase the turn as a concierge reply.
func (r *Responder) Respond(ctx context.Context, turn *ai.Turn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(buildTurnPrompt(turn))},
		},
	}

	response, err := r.client.GenerateContent(ctx, content, llms.WithTemperature(r.temperature))
	if err != nil {
		r.logger.Error("failed to generate reply", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", fmt.Errorf("model returned no choices")
	}

	reply := scrubReply(response.Choices[0].Content)
	if reply == "" {
		return "", fmt.Errorf("model returned an empty reply")
	}
	r.logger.Debug("generated reply", "length", len(reply))
	return reply, nil
}

// scrubReply strips wrapping quotes and markdown fences some models add.
func scrubReply(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}
