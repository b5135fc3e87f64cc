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

package github

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Request is a single GraphQL operation: a query document and its variables.
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// NewRequest builds a Request. A nil variable map is sent as an empty object.
func NewRequest(query string, variables map[string]any) Request {
	if variables == nil {
		variables = map[string]any{}
	}
	return Request{Query: query, Variables: variables}
}

// Response is the decoded GraphQL envelope. Data is kept raw so each caller
// can decode the shape it asked for.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// HasData reports whether the response carries a non-null data payload.
func (r *Response) HasData() bool {
	if r == nil {
		return false
	}
	return len(r.Data) > 0 && string(r.Data) != "null"
}

// Decode unmarshals the data payload into v.
func (r *Response) Decode(v any) error {
	if !r.HasData() {
		return fmt.Errorf("response has no data")
	}
	return json.Unmarshal(r.Data, v)
}

// GraphQLError is one entry of the errors list returned next to (or instead
// of) data.
type GraphQLError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Path    []any  `json:"path,omitempty"`
}

// PageInfo carries the cursor state of a connection.
type PageInfo struct {
	EndCursor   *string `json:"endCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// TotalCount is the shape of a `{ totalCount }` selection.
type TotalCount struct {
	TotalCount int `json:"totalCount"`
}

// RepositoryCandidate is a repository returned by the stars-ordered search.
type RepositoryCandidate struct {
	Owner            string
	Name             string
	PullRequestCount int
}

// FullName returns "owner/name".
func (c RepositoryCandidate) FullName() string {
	return c.Owner + "/" + c.Name
}

// PullRequestNode is one merged or closed pull request as returned by the
// pull request query. Timestamps stay in their wire form; nullable objects
// are pointers.
type PullRequestNode struct {
	State        string      `json:"state"`
	CreatedAt    string      `json:"createdAt"`
	ClosedAt     *string     `json:"closedAt"`
	MergedAt     *string     `json:"mergedAt"`
	Additions    int         `json:"additions"`
	Deletions    int         `json:"deletions"`
	ChangedFiles int         `json:"changedFiles"`
	BodyText     *string     `json:"bodyText"`
	Participants *TotalCount `json:"participants"`
	Comments     *TotalCount `json:"comments"`
	Reviews      *TotalCount `json:"reviews"`
}

// RepositoryInfo contains basic repository metadata.
type RepositoryInfo struct {
	NameWithOwner     string
	Stars             int
	IsArchived        bool
	TotalPullRequests int
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("graphql endpoint returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("graphql endpoint returned %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// StatusCode implements giterror.StatusCoder.
func (e *StatusError) StatusCode() int { return e.Code }

// transportError marks a failure below the HTTP status layer: a broken or
// undecodable body.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }
func (e *transportError) TransportFailure() bool { return true }
