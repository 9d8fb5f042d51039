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

package match

import "errors"

var (
	// ErrCatalogRequired is returned when a catalog vector space is not provided.
	ErrCatalogRequired = errors.New("catalog required")

	// ErrExpanderRequired is returned when a synonym expander is not provided.
	ErrExpanderRequired = errors.New("synonym expander required")

	// ErrEmptyText is returned when the text to match is blank.
	ErrEmptyText = errors.New("indication text is empty")

	// ErrEmptyQuery is returned when preprocessing and expansion leave no terms.
	ErrEmptyQuery = errors.New("query has no terms after preprocessing")

	// ErrInvalidQuery is returned for a threshold outside [0,1] or a
	// non-positive result limit.
	ErrInvalidQuery = errors.New("invalid match query")
)
