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

// Package extract pulls indication and directions text out of drug labels.
//
// Structured Product Label (SPL) XML is parsed into a tree and every section
// is classified as a CodeSection, TitledSection or UntitledSection. A
// section belongs to the requested kind when it carries the kind's LOINC
// code (34067-9 for indications, 34068-7 for directions). Failing that, its
// title is checked against keywords: indication titles must equal a keyword
// and direction titles need only contain one. A code match skips the title
// check.
//
// Matching sections contribute paragraphs, list items, table rows and their
// remaining direct text. Directions list items carry a bullet. Fragments are
// deduplicated in first-seen order.
//
// Rendered label pages are handled by ExtractHTML, which reads the div
// marked with the section code.
//
// Extraction never fails: malformed input is logged and yields nil.
package extract
