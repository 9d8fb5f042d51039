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

package core

import (
	"fmt"
	"strings"
)

// ValidateCatalogEntry validates a CatalogEntry according to domain rules.
//
// Validation rules:
//   - Code must not be blank
//   - Description must not be blank
//
// Category may be empty.
func ValidateCatalogEntry(entry *CatalogEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidCatalogEntry)
	}

	if strings.TrimSpace(entry.Code) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCatalogEntry, ErrEmptyCode)
	}

	if strings.TrimSpace(entry.Description) == "" {
		return fmt.Errorf("%w: code %s: %w", ErrInvalidCatalogEntry, entry.Code, ErrEmptyDescription)
	}

	return nil
}

// ValidateCatalog validates every entry and checks that codes are unique.
func ValidateCatalog(entries []*CatalogEntry) error {
	if len(entries) == 0 {
		return ErrEmptyCatalog
	}

	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if err := ValidateCatalogEntry(entry); err != nil {
			return err
		}
		if _, ok := seen[entry.Code]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateCode, entry.Code)
		}
		seen[entry.Code] = struct{}{}
	}

	return nil
}

// ValidateLabelMapping validates a LabelMapping before it is stored.
func ValidateLabelMapping(label *LabelMapping) error {
	if label == nil {
		return fmt.Errorf("%w: label is nil", ErrInvalidLabelMapping)
	}

	if strings.TrimSpace(label.Drug) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidLabelMapping, ErrEmptyDrugName)
	}

	return nil
}
