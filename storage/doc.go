// Copyright 2026 Inkwell Systems
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


// Package storage defines the similarity-index abstraction used by the
// ingestion pipeline, plus the MUS serialization of stored records.
//
// CollectionRepository is the single repository interface; two backends
// implement it:
//
//   - storage/badger: embedded BadgerDB, the default
//   - storage/qdrant: a remote Qdrant instance over its REST API
//
// Constructors in the backend packages return the interface type so
// consumers never couple to a specific backend.
//
// The collection manifest doubles as the commit marker: chunks are written
// first and the manifest last, so a collection whose ingestion failed
// partway is never visible through GetCollection.
package storage
