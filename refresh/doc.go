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


// Package refresh copies the upstream residence catalog into local storage.
//
// The catalog is read page by page. Each page is handed to an Ingester (normally
// the ingestion pipeline) and a checkpoint is saved after it, so an interrupted
// refresh can resume from the last completed page.
package refresh
