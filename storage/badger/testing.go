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


package badger

// Repositories bundles every BadgerDB repository sharing one backend.
type Repositories struct {
	Backend     *Backend
	Sessions    *SessionRepository
	Catalog     *CatalogRepository
	Vocabulary  *VocabularyRepository
	Checkpoints *CheckpointRepository
}

// Close closes the repositories and the backend.
func (r *Repositories) Close() error {
	r.Sessions.Close()
	r.Catalog.Close()
	r.Vocabulary.Close()
	return r.Backend.Close()
}

// NewRepositories creates every repository on top of an open backend.
func NewRepositories(backend *Backend) (*Repositories, error) {
	sessions, err := NewSessionRepository(backend)
	if err != nil {
		return nil, err
	}
	catalog, err := NewCatalogRepository(backend)
	if err != nil {
		return nil, err
	}
	vocab, err := NewVocabularyRepository(backend)
	if err != nil {
		return nil, err
	}
	return &Repositories{
		Backend:     backend,
		Sessions:    sessions,
		Catalog:     catalog,
		Vocabulary:  vocab,
		Checkpoints: NewCheckpointRepository(backend),
	}, nil
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must Close the result when done.
func NewMemoryRepositories() (*Repositories, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	repos, err := NewRepositories(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return repos, nil
}
