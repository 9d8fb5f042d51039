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

import "errors"

// Domain validation errors
var (
	// ErrInvalidCatalogEntry indicates a CatalogEntry failed validation.
	ErrInvalidCatalogEntry = errors.New("invalid catalog entry")

	// ErrEmptyCode indicates the Code field is empty.
	ErrEmptyCode = errors.New("code cannot be empty")

	// ErrEmptyDescription indicates the Description field is empty.
	ErrEmptyDescription = errors.New("description cannot be empty")

	// ErrDuplicateCode indicates a code appears more than once in a catalog.
	ErrDuplicateCode = errors.New("duplicate catalog code")

	// ErrEmptyCatalog indicates a catalog with no entries.
	ErrEmptyCatalog = errors.New("catalog is empty")

	// ErrInvalidSectionKind indicates an unknown section kind.
	ErrInvalidSectionKind = errors.New("invalid section kind")

	// ErrInvalidLabelMapping indicates a LabelMapping failed validation.
	ErrInvalidLabelMapping = errors.New("invalid label mapping")

	// ErrEmptyDrugName indicates the Drug field is empty.
	ErrEmptyDrugName = errors.New("drug name cannot be empty")
)

// Processing errors
var (
	// ErrNotFound indicates no matching section or document exists.
	ErrNotFound = errors.New("not found")

	// ErrParseFailure indicates malformed markup.
	ErrParseFailure = errors.New("parse failure")

	// ErrInitialization indicates the catalog could not be loaded or fitted.
	ErrInitialization = errors.New("initialization failed")
)
