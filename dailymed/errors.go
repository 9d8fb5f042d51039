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

package dailymed

import (
	"errors"
	"fmt"

	"github.com/poiesic/labelmap/core"
)

var (
	// ErrNotFound is returned for a 404 or a search with no results.
	ErrNotFound = core.ErrNotFound

	// ErrInvalidConfig is returned when the client configuration is unusable.
	ErrInvalidConfig = errors.New("invalid dailymed client configuration")

	// ErrEmptyName is returned when a drug name or set id is blank.
	ErrEmptyName = errors.New("name is empty")
)

// StatusError is returned for an unexpected HTTP status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dailymed: unexpected status %d from %s", e.StatusCode, e.URL)
}
