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

package pipeline

import "errors"

var (
	// ErrLabelRepositoryRequired is returned when a label repository is not provided.
	ErrLabelRepositoryRequired = errors.New("label repository required")

	// ErrSourceRequired is returned when a label source is not provided.
	ErrSourceRequired = errors.New("label source required")

	// ErrMapperRequired is returned when an indication mapper is not provided.
	ErrMapperRequired = errors.New("indication mapper required")

	// ErrLabelNotFound is returned when the source has no label for a drug.
	ErrLabelNotFound = errors.New("label not found")

	// ErrNoIndications is returned when a label has no indications section.
	ErrNoIndications = errors.New("label has no indications")
)
