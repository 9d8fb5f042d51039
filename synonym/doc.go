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

// Package synonym expands medical phrases with synonym clusters.
//
// A Table maps canonical terms to synonym phrases. The Expander closes it
// symmetrically, so every member of a cluster reaches every other member,
// then scores an input phrase against each key with an injected
// ai.Similarity and unions the clusters of keys at or above the threshold
// (0.8 by default).
package synonym
