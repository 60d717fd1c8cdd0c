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

// Package schema holds the static definitions shared by every pipeline stage:
// the categorical code tables, the retained column allow-list and the search
// index mapping.
//
// Everything here is read-only. The mapping returned by DefaultMapping is a
// fresh value on each call so callers cannot mutate a shared instance.
package schema
