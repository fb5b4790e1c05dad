// Copyright 2025 the fetchpush authors
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

// Package config parses mapping files into an ordered URL→destination
// mapping. Source URLs have their {placeholder} tokens expanded during
// loading, so the rest of the pipeline only ever sees final URLs.
package config

// 🎯 Entry is one mapping pair in iteration order.
type Entry struct {
	// Source is the processed (placeholder-expanded) URL.
	Source string
	// Destination is the local file path the content is written to.
	Destination string
}

// 📦 Mapping is an ordered collection of entries keyed by processed source
// URL. Setting an existing URL overwrites its destination but keeps the
// URL's original position, like updating a key in an insertion-ordered
// table.
type Mapping struct {
	order []string
	byURL map[string]string
}

// 🏭 NewMapping creates an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{
		byURL: map[string]string{},
	}
}

// 📝 Set inserts or overwrites the destination for a URL.
func (m *Mapping) Set(url, dest string) {
	if _, ok := m.byURL[url]; !ok {
		m.order = append(m.order, url)
	}
	m.byURL[url] = dest
}

// 🔍 Get returns the destination for a URL.
func (m *Mapping) Get(url string) (string, bool) {
	dest, ok := m.byURL[url]
	return dest, ok
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	return len(m.order)
}

// 📋 Entries returns the entries in insertion order.
func (m *Mapping) Entries() []Entry {
	entries := make([]Entry, 0, len(m.order))
	for _, url := range m.order {
		entries = append(entries, Entry{Source: url, Destination: m.byURL[url]})
	}
	return entries
}
