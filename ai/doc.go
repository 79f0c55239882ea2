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


// Package ai provides abstractions for the AI services used by concierge.
//
// Matching and ranking are deterministic and never depend on a model. A model is
// only used to phrase the outcome of a turn as a friendly reply, so every reply
// has a deterministic fallback: Template.
//
// # Design Principles
//
// The package is designed around two interfaces:
//
//   - Responder: phrases a processed turn as text
//   - AIProvider: aggregates AI services for convenient initialization
//
// # Implementation Packages
//
//   - ai/openai: implementation using OpenAI-compatible APIs through langchaingo
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewProvider, openai.NewResponder) return INTERFACE
// types. Test utility constructors (mock.NewMockResponder) return CONCRETE types
// so tests can inspect CallCount and inject behavior.
//
// # Usage Example
//
//	provider, err := openai.NewProvider(ai.NewConfig(ai.WithModel("gpt-4o-mini")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//	reply, err := provider.Responder().Respond(ctx, turn)
//	if err != nil {
//	    reply = ai.Describe(turn)
//	}
package ai
