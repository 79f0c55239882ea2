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


// Package storage provides the storage abstraction layer for concierge.
//
// This package defines repository interfaces that decouple storage implementation
// from the conversation logic. Sessions, the residence catalog, vocabulary lists and
// job checkpoints each have their own repository so they can live in different
// backends:
//
//   - SessionRepository: conversation sessions (badger, redis)
//   - CatalogRepository: candidate residences and candidate queries (badger, sqlite)
//   - VocabularyRepository: canonical values per field (badger)
//   - CheckpointRepository: progress of catalog refreshes (badger)
//
// # Usage
//
// Open an embedded store:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	sessions := badger.NewSessionRepository(backend)
//
// Use in tests with in-memory storage:
//
//	repos, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repos.Close()
//
// # Values
//
// Records are stored as JSON (see serialization.go). Every backend uses the same
// encoding so a session written by one backend can be read by another.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
