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

package mergequeue

import (
	"context"
	"strings"

	"go.uber.org/zap"

	mqerrors "github.com/sirseerhq/merge-queue/internal/errors"
	"github.com/sirseerhq/merge-queue/internal/resource"
)

// oneLine keeps a branch identifier on the single ERROR line while leaving
// quotes and other characters as the user typed them.
var oneLine = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// ProposalExpansion is applied to every merge proposal.
var ProposalExpansion = resource.Expansion{
	"votes": resource.Many(resource.Expansion{
		"comment":  resource.One(nil),
		"reviewer": resource.One(nil),
	}),
	"source_branch": resource.One(nil),
}

// BranchResolver finds a branch by any of its URLs. It returns (nil, nil)
// when no branch matches.
type BranchResolver interface {
	BranchByURL(ctx context.Context, branchURL string) (resource.Object, error)
}

// Query lists merge proposals through a BranchResolver.
type Query struct {
	resolver BranchResolver
	logger   *zap.Logger
}

// NewQuery creates a Query. A nil logger discards output.
func NewQuery(resolver BranchResolver, logger *zap.Logger) *Query {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Query{resolver: resolver, logger: logger}
}

// GetMergeProposals returns the branch's landing candidates in server order,
// each flattened with ProposalExpansion and carrying a "reviews" summary.
func (q *Query) GetMergeProposals(ctx context.Context, branchURL string) ([]resource.Record, error) {
	branch, err := q.resolver.BranchByURL(ctx, branchURL)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, mqerrors.NewUserError(mqerrors.ErrBranchNotFound, `Not a valid branch: "%s"`, oneLine.Replace(branchURL))
	}

	q.logger.Debug("resolved branch",
		zap.String("url", branchURL),
		zap.String("self_link", branch.Representation().String("self_link")))

	flat, err := resource.Flatten(ctx, branch, resource.Expansion{
		"landing_candidates": resource.Many(ProposalExpansion),
	})
	if err != nil {
		return nil, err
	}

	proposals := flat.Records("landing_candidates")
	if proposals == nil {
		proposals = []resource.Record{}
	}
	for _, proposal := range proposals {
		proposal["reviews"] = Reviews(proposal)
	}

	q.logger.Debug("fetched merge proposals", zap.Int("count", len(proposals)))
	return proposals, nil
}

// Reviews summarizes a flattened proposal's votes as reviewer/vote pairs,
// in vote order. Votes without a comment have not been cast yet and are
// skipped; a reviewer may appear more than once.
func Reviews(proposal resource.Record) []resource.Record {
	reviews := []resource.Record{}
	for _, vote := range proposal.Records("votes") {
		comment := vote.Record("comment")
		if comment == nil {
			continue
		}
		reviews = append(reviews, resource.Record{
			"reviewer": vote.Record("reviewer").String("display_name"),
			"vote":     comment["vote"],
		})
	}
	return reviews
}
