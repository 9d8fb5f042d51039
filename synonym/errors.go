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

package synonym

import "errors"

var (
	// ErrSimilarityRequired indicates an expander was built without a similarity capability.
	ErrSimilarityRequired = errors.New("similarity required")

	// ErrInvalidTable indicates a malformed synonym table.
	ErrInvalidTable = errors.New("invalid synonym table")

	// ErrInvalidThreshold indicates a threshold outside [0,1].
	ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")
)
