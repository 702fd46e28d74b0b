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
	"errors"
	"fmt"

	mqerrors "github.com/sirseerhq/merge-queue/internal/errors"
)

// LookupError records which attribute path failed to expand. It unwraps to
// the underlying cause, so an authentication failure deep in the tree is
// still recognisable. It matches ErrRemoteLookup only when the cause is
// already classified (a missing attribute, or an auth, network or HTTP
// failure); anything else stays an unexpected error.
type LookupError struct {
	Path string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("cannot expand %s: %v", e.Path, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRemoteLookup and the cause is user-facing.
func (e *LookupError) Is(target error) bool {
	return target == mqerrors.ErrRemoteLookup && mqerrors.IsUserError(e.Err)
}

// Flatten returns obj's representation with every attribute named in exp
// replaced by its recursively flattened value. Collections become []Record in
// server order; a present but empty link becomes nil. The raw reference token
// for each expanded attribute is removed.
//
// Fetches happen one at a time, depth-first, in sorted attribute order. Any
// failure aborts the whole flatten; no partial record is returned.
func Flatten(ctx context.Context, obj Object, exp Expansion) (Record, error) {
	return flatten(ctx, obj, exp, "")
}

func flatten(ctx context.Context, obj Object, exp Expansion, path string) (Record, error) {
	base := obj.Representation()
	out := make(Record, len(base)+len(exp))
	for k, v := range base {
		out[k] = v
	}

	for _, name := range exp.names() {
		node := exp[name]
		at := joinPath(path, name)

		switch node.Kind {
		case KindMany:
			items, err := obj.Collection(ctx, name)
			if err != nil {
				return nil, lookupError(at, err)
			}
			records := make([]Record, 0, len(items))
			for i, item := range items {
				record, err := flatten(ctx, item, node.Children, fmt.Sprintf("%s[%d]", at, i))
				if err != nil {
					return nil, err
				}
				records = append(records, record)
			}
			out[name] = records

		case KindOne:
			child, err := obj.Entry(ctx, name)
			if err != nil {
				return nil, lookupError(at, err)
			}
			if child == nil {
				out[name] = nil
				break
			}
			record, err := flatten(ctx, child, node.Children, at)
			if err != nil {
				return nil, err
			}
			out[name] = record

		default:
			return nil, fmt.Errorf("resource: %s has invalid expansion kind %d", at, node.Kind)
		}

		if key := obj.ReferenceKey(name, node.Kind); key != "" && key != name {
			delete(out, key)
		}
	}

	return out, nil
}

func lookupError(path string, err error) error {
	var le *LookupError
	if errors.As(err, &le) {
		return err
	}
	return &LookupError{Path: path, Err: err}
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
