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

package launchpad

import (
	"context"
	"fmt"

	mqerrors "github.com/sirseerhq/merge-queue/internal/errors"
	"github.com/sirseerhq/merge-queue/internal/resource"
)

// Launchpad exposes links as "<name>_link" and collections as
// "<name>_collection_link" in every JSON representation.
const (
	linkSuffix           = "_link"
	collectionLinkSuffix = "_collection_link"
)

// Entry is one Launchpad resource (branch, merge proposal, vote, person...)
// as returned by the web service. It implements resource.Object.
type Entry struct {
	client *Client
	rep    resource.Record
}

func (c *Client) newEntry(rep map[string]any) *Entry {
	return &Entry{client: c, rep: resource.Record(rep)}
}

// SelfLink returns the entry's canonical URL.
func (e *Entry) SelfLink() string {
	return e.rep.String("self_link")
}

// ResourceType returns the WADL type link, e.g. ".../#branch_merge_proposal".
func (e *Entry) ResourceType() string {
	return e.rep.String("resource_type_link")
}

// Representation implements resource.Object.
func (e *Entry) Representation() resource.Record {
	return e.rep
}

// Entry implements resource.Object.
func (e *Entry) Entry(ctx context.Context, name string) (resource.Object, error) {
	link, present, err := e.link(name + linkSuffix)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	entry, err := e.client.Get(ctx, link)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Collection implements resource.Object.
func (e *Entry) Collection(ctx context.Context, name string) ([]resource.Object, error) {
	link, present, err := e.link(name + collectionLinkSuffix)
	if err != nil {
		return nil, err
	}
	if !present {
		return []resource.Object{}, nil
	}
	entries, err := e.client.GetCollection(ctx, link)
	if err != nil {
		return nil, err
	}
	objects := make([]resource.Object, len(entries))
	for i, entry := range entries {
		objects[i] = entry
	}
	return objects, nil
}

// ReferenceKey implements resource.Object.
func (e *Entry) ReferenceKey(name string, kind resource.Kind) string {
	if kind == resource.KindMany {
		return name + collectionLinkSuffix
	}
	return name + linkSuffix
}

// link returns the URL stored under key. present is false when the key
// exists but holds null or an empty string.
func (e *Entry) link(key string) (link string, present bool, err error) {
	raw, ok := e.rep[key]
	if !ok {
		return "", false, fmt.Errorf("%w: %s has no attribute %q", mqerrors.ErrRemoteLookup, e.describe(), key)
	}
	if raw == nil {
		return "", false, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", false, fmt.Errorf("%w: %s attribute %q is %T, not a link", mqerrors.ErrRemoteLookup, e.describe(), key, raw)
	}
	return s, s != "", nil
}

func (e *Entry) describe() string {
	if self := e.SelfLink(); self != "" {
		return self
	}
	if kind := e.ResourceType(); kind != "" {
		return "entry of type " + kind
	}
	return "entry"
}
