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

// Package dataset turns raw pull request nodes into survey records and
// converts records to and from CSV rows.
package dataset

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/sirseerhq/sirseer-survey/internal/github"
)

// MinAnalysisHours is the exclusive lower bound on the time between opening
// and closing a pull request for it to be kept.
const MinAnalysisHours = 1.0

// Columns is the header of every dataset file, in order.
var Columns = []string{
	"repository",
	"status",
	"analysis_time_hours",
	"size_files",
	"size_additions",
	"size_deletions",
	"description_chars",
	"interaction_participants",
	"interaction_comments",
	"reviews_count",
}

// Record is one reviewed pull request.
type Record struct {
	Repository              string
	Status                  string
	AnalysisTimeHours       float64
	SizeFiles               int
	SizeAdditions           int
	SizeDeletions           int
	DescriptionChars        int
	InteractionParticipants int
	InteractionComments     int
	ReviewsCount            int
}

// SizeLinesTotal is additions plus deletions.
func (r Record) SizeLinesTotal() int {
	return r.SizeAdditions + r.SizeDeletions
}

// Derive builds the record for node. It reports false, with no error, for
// pull requests that were never reviewed, never reached a terminal state, or
// were closed within MinAnalysisHours of being opened. A timestamp that does
// not parse is an error.
func Derive(repository string, node *github.PullRequestNode) (Record, bool, error) {
	if node == nil || node.Reviews == nil || node.Reviews.TotalCount < 1 {
		return Record{}, false, nil
	}

	terminal := node.MergedAt
	if terminal == nil {
		terminal = node.ClosedAt
	}
	if terminal == nil {
		return Record{}, false, nil
	}

	created, err := time.Parse(time.RFC3339, node.CreatedAt)
	if err != nil {
		return Record{}, false, fmt.Errorf("parse createdAt: %w", err)
	}
	ended, err := time.Parse(time.RFC3339, *terminal)
	if err != nil {
		return Record{}, false, fmt.Errorf("parse terminal timestamp: %w", err)
	}

	hours := ended.Sub(created).Hours()
	if hours <= MinAnalysisHours {
		return Record{}, false, nil
	}

	rec := Record{
		Repository:        repository,
		Status:            node.State,
		AnalysisTimeHours: hours,
		SizeFiles:         node.ChangedFiles,
		SizeAdditions:     node.Additions,
		SizeDeletions:     node.Deletions,
		ReviewsCount:      node.Reviews.TotalCount,
	}
	if node.BodyText != nil {
		rec.DescriptionChars = utf8.RuneCountInString(*node.BodyText)
	}
	if node.Participants != nil {
		rec.InteractionParticipants = node.Participants.TotalCount
	}
	if node.Comments != nil {
		rec.InteractionComments = node.Comments.TotalCount
	}
	return rec, true, nil
}

// DeriveAll derives every node in order and returns the records kept.
func DeriveAll(repository string, nodes []*github.PullRequestNode) ([]Record, error) {
	var out []Record
	for i, node := range nodes {
		rec, ok, err := Derive(repository, node)
		if err != nil {
			return nil, fmt.Errorf("pull request %d of %s: %w", i, repository, err)
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Row formats r in Columns order.
func (r Record) Row() []string {
	return []string{
		r.Repository,
		r.Status,
		strconv.FormatFloat(r.AnalysisTimeHours, 'f', -1, 64),
		strconv.Itoa(r.SizeFiles),
		strconv.Itoa(r.SizeAdditions),
		strconv.Itoa(r.SizeDeletions),
		strconv.Itoa(r.DescriptionChars),
		strconv.Itoa(r.InteractionParticipants),
		strconv.Itoa(r.InteractionComments),
		strconv.Itoa(r.ReviewsCount),
	}
}

// ParseRow is the inverse of Row.
func ParseRow(row []string) (Record, error) {
	if len(row) != len(Columns) {
		return Record{}, fmt.Errorf("row has %d fields, want %d", len(row), len(Columns))
	}

	hours, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", Columns[2], err)
	}
	ints := make([]int, 7)
	for i := range ints {
		col := i + 3
		v, err := strconv.Atoi(row[col])
		if err != nil {
			return Record{}, fmt.Errorf("%s: %w", Columns[col], err)
		}
		ints[i] = v
	}

	return Record{
		Repository:              row[0],
		Status:                  row[1],
		AnalysisTimeHours:       hours,
		SizeFiles:               ints[0],
		SizeAdditions:           ints[1],
		SizeDeletions:           ints[2],
		DescriptionChars:        ints[3],
		InteractionParticipants: ints[4],
		InteractionComments:     ints[5],
		ReviewsCount:            ints[6],
	}, nil
}
