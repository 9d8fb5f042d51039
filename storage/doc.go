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

// Package storage provides the storage abstraction layer for labelmap.
//
// This package defines repository interfaces that decouple storage implementation
// from business logic. The badger subpackage is the only backend.
//
// # Architecture
//
//   - CatalogRepository: the diagnosis catalog, keyed by code
//   - LabelRepository: label mappings cached per drug name with a TTL
//   - CheckpointRepository: records of completed catalog loads
//
// Records are encoded with mus-go. Every encoded record starts with a
// version byte.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	catalogRepo, labelRepo, backend, err := badger.NewMemoryRepositories(time.Hour)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
