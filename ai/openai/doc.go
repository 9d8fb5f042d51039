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

// Package openai implements the ai interfaces against OpenAI-compatible
// embedding APIs such as Ollama, LocalAI or vLLM.
//
// Embeddings are produced through langchaingo. The provider's similarity
// capability compares strings by the cosine of their embeddings and keeps
// an LRU cache of vectors, so the synonym table's keys are embedded once.
package openai
