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

// Package vectorize fits a TF-IDF vector space over a diagnosis code catalog.
//
// Descriptions are tokenized into lowercase word tokens, English stopwords
// are dropped and n-grams of length one to three become features. The
// vocabulary is bounded by corpus frequency, weights use smoothed inverse
// document frequency and every vector is L2 normalised, so cosine scores
// fall in [0,1].
//
// A Catalog is built once and never mutated. Text vectorized later against
// it silently drops terms outside the fitted vocabulary.
package vectorize
