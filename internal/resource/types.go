// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resource

import (
	"context"
	"sort"
)

// Record is a flattened snapshot of a remote object. Values are JSON
// compatible: server scalars, nested Records, or []Record.
type Record map[string]any

// Record returns the nested record stored under key, or nil.
func (r Record) Record(key string) Record {
	switch v := r[key].(type) {
	case Record:
		return v
	case map[string]any:
		return Record(v)
	}
	return nil
}

// Records returns the record sequence stored under key, or nil.
func (r Record) Records(key string) []Record {
	v, _ := r[key].([]Record)
	return v
}

// String returns the string stored under key, or "" when absent or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Kind distinguishes a single linked object from a linked collection.
type Kind int

const (
	// KindOne expands a single linked object.
	KindOne Kind = iota + 1
	// KindMany expands every element of a linked collection.
	KindMany
)

func (k Kind) String() string {
	switch k {
	case KindOne:
		return "one"
	case KindMany:
		return "many"
	default:
		return "unknown"
	}
}

// Node describes how one attribute is expanded and what to expand beneath it.
type Node struct {
	Kind     Kind
	Children Expansion
}

// Expansion maps attribute names to the way they are expanded. Attributes
// that are not listed are left as the server provided them.
type Expansion map[string]Node

// One expands a single linked object, then applies children to it.
func One(children Expansion) Node {
	return Node{Kind: KindOne, Children: children}
}

// Many expands each element of a linked collection, then applies children to each.
func Many(children Expansion) Node {
	return Node{Kind: KindMany, Children: children}
}

// names returns the expanded attribute names in a stable order.
func (e Expansion) names() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Object is a handle to a server-side resource.
type Object interface {
	// Representation returns the object's own attributes. Linked resources
	// appear as reference tokens. Callers must not modify the result.
	Representation() Record

	// Entry fetches the linked object called name. It returns (nil, nil)
	// when the link exists but is empty.
	Entry(ctx context.Context, name string) (Object, error)

	// Collection fetches every element of the linked collection called name,
	// in server order.
	Collection(ctx context.Context, name string) ([]Object, error)

	// ReferenceKey returns the representation key that holds the reference
	// token for name, or "" if the representation has none.
	ReferenceKey(name string, kind Kind) string
}
