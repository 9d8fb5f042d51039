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

package catalog

import "errors"

var (
	// ErrRepositoryRequired is returned when no catalog repository is provided.
	ErrRepositoryRequired = errors.New("catalog repository required")

	// ErrCheckpointsRequired is returned when no checkpoint repository is provided.
	ErrCheckpointsRequired = errors.New("checkpoint repository required")

	// ErrMissingColumn is returned when the CSV header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrMalformedCSV is returned when the CSV cannot be parsed.
	ErrMalformedCSV = errors.New("malformed catalog csv")
)
