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
	"fmt"

	mqerrors "github.com/sirseerhq/merge-queue/internal/errors"
)

// MockObject is an in-memory Object for testing. Links and collections use
// Launchpad's naming: a link "x" appears in the representation as "x_link"
// and a collection "x" as "x_collection_link".
type MockObject struct {
	// SelfLink identifies the object; it is exposed as "self_link".
	SelfLink string

	// Fields are the scalar attributes.
	Fields Record

	// Links maps link names to targets. A nil target is an empty link.
	Links map[string]*MockObject

	// Collections maps collection names to their elements.
	Collections map[string][]*MockObject

	// Error, if set, is returned by every Entry and Collection call.
	Error error

	// Track calls for verification
	EntryCalls      int
	CollectionCalls int
}

// NewMockObject creates a mock with the given self link and scalar fields.
func NewMockObject(selfLink string, fields Record) *MockObject {
	if fields == nil {
		fields = Record{}
	}
	return &MockObject{
		SelfLink:    selfLink,
		Fields:      fields,
		Links:       map[string]*MockObject{},
		Collections: map[string][]*MockObject{},
	}
}

// WithLink sets a single link and returns m for chaining.
func (m *MockObject) WithLink(name string, target *MockObject) *MockObject {
	m.Links[name] = target
	return m
}

// WithCollection sets a collection and returns m for chaining.
func (m *MockObject) WithCollection(name string, items ...*MockObject) *MockObject {
	m.Collections[name] = items
	return m
}

// Representation implements Object.
func (m *MockObject) Representation() Record {
	rep := make(Record, len(m.Fields)+len(m.Links)+len(m.Collections)+1)
	for k, v := range m.Fields {
		rep[k] = v
	}
	rep["self_link"] = m.SelfLink
	for name, target := range m.Links {
		if target == nil {
			rep[name+"_link"] = nil
		} else {
			rep[name+"_link"] = target.SelfLink
		}
	}
	for name := range m.Collections {
		rep[name+"_collection_link"] = m.SelfLink + "/" + name
	}
	return rep
}

// Entry implements Object.
func (m *MockObject) Entry(ctx context.Context, name string) (Object, error) {
	m.EntryCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Error != nil {
		return nil, m.Error
	}
	target, ok := m.Links[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no link %q", mqerrors.ErrRemoteLookup, m.SelfLink, name)
	}
	if target == nil {
		return nil, nil
	}
	return target, nil
}

// Collection implements Object.
func (m *MockObject) Collection(ctx context.Context, name string) ([]Object, error) {
	m.CollectionCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Error != nil {
		return nil, m.Error
	}
	items, ok := m.Collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no collection %q", mqerrors.ErrRemoteLookup, m.SelfLink, name)
	}
	objects := make([]Object, len(items))
	for i, item := range items {
		objects[i] = item
	}
	return objects, nil
}

// ReferenceKey implements Object.
func (m *MockObject) ReferenceKey(name string, kind Kind) string {
	if kind == KindMany {
		return name + "_collection_link"
	}
	return name + "_link"
}
