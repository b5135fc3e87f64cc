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

// Package stats computes the summary statistics reported for a survey
// dataset: per-status medians, column descriptions and the Spearman rank
// correlation matrix.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/sirseerhq/sirseer-survey/internal/dataset"
)

// Metric is a numeric column derived from a record.
type Metric struct {
	Name  string
	Value func(r dataset.Record) float64
}

// MedianMetrics are the columns summarized per status.
var MedianMetrics = []Metric{
	{"size_files", func(r dataset.Record) float64 { return float64(r.SizeFiles) }},
	{"size_lines_total", func(r dataset.Record) float64 { return float64(r.SizeLinesTotal()) }},
	{"analysis_time_hours", func(r dataset.Record) float64 { return r.AnalysisTimeHours }},
	{"description_chars", func(r dataset.Record) float64 { return float64(r.DescriptionChars) }},
	{"interaction_participants", func(r dataset.Record) float64 { return float64(r.InteractionParticipants) }},
	{"interaction_comments", func(r dataset.Record) float64 { return float64(r.InteractionComments) }},
}

// NumericMetrics are the numeric dataset columns, in file order.
var NumericMetrics = []Metric{
	{"analysis_time_hours", func(r dataset.Record) float64 { return r.AnalysisTimeHours }},
	{"size_files", func(r dataset.Record) float64 { return float64(r.SizeFiles) }},
	{"size_additions", func(r dataset.Record) float64 { return float64(r.SizeAdditions) }},
	{"size_deletions", func(r dataset.Record) float64 { return float64(r.SizeDeletions) }},
	{"description_chars", func(r dataset.Record) float64 { return float64(r.DescriptionChars) }},
	{"interaction_participants", func(r dataset.Record) float64 { return float64(r.InteractionParticipants) }},
	{"interaction_comments", func(r dataset.Record) float64 { return float64(r.InteractionComments) }},
	{"reviews_count", func(r dataset.Record) float64 { return float64(r.ReviewsCount) }},
}

// StatusMedians holds the medians of MedianMetrics for one status.
type StatusMedians struct {
	Status  string
	Count   int
	Medians []float64 // indexed like MedianMetrics
}

// MediansByStatus groups records by status and computes the median of each
// MedianMetrics column. Groups are sorted by status.
func MediansByStatus(records []dataset.Record) []StatusMedians {
	groups := map[string][]dataset.Record{}
	for _, r := range records {
		groups[r.Status] = append(groups[r.Status], r)
	}

	statuses := make([]string, 0, len(groups))
	for s := range groups {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)

	out := make([]StatusMedians, 0, len(statuses))
	for _, s := range statuses {
		group := groups[s]
		sm := StatusMedians{Status: s, Count: len(group), Medians: make([]float64, len(MedianMetrics))}
		for i, m := range MedianMetrics {
			sm.Medians[i] = Median(column(group, m))
		}
		out = append(out, sm)
	}
	return out
}

// Median returns the middle value of x, averaging the two middle values when
// len(x) is even. It returns NaN for an empty slice. x is not modified.
func Median(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Description summarizes one column.
type Description struct {
	Name   string
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Median float64
	Max    float64
}

// Describe summarizes every NumericMetrics column.
func Describe(records []dataset.Record) []Description {
	out := make([]Description, 0, len(NumericMetrics))
	for _, m := range NumericMetrics {
		x := column(records, m)
		d := Description{Name: m.Name, Count: len(x), Mean: math.NaN(), StdDev: math.NaN(), Min: math.NaN(), Median: math.NaN(), Max: math.NaN()}
		if len(x) > 0 {
			d.Mean, d.StdDev = stat.MeanStdDev(x, nil)
			sorted := append([]float64(nil), x...)
			sort.Float64s(sorted)
			d.Min, d.Max = sorted[0], sorted[len(sorted)-1]
			d.Median = Median(sorted)
		}
		out = append(out, d)
	}
	return out
}

// Matrix is a square correlation matrix with labelled rows and columns.
type Matrix struct {
	Labels []string
	Values [][]float64
}

// SpearmanMatrix computes the Spearman rank correlation between every pair of
// NumericMetrics columns. Ties receive their average rank. A constant column
// correlates as NaN.
func SpearmanMatrix(records []dataset.Record) Matrix {
	n := len(NumericMetrics)
	ranks := make([][]float64, n)
	labels := make([]string, n)
	for i, m := range NumericMetrics {
		labels[i] = m.Name
		ranks[i] = Rank(column(records, m))
	}

	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c := math.NaN()
			if len(records) > 1 {
				c = stat.Correlation(ranks[i], ranks[j], nil)
			}
			values[i][j], values[j][i] = c, c
		}
	}
	return Matrix{Labels: labels, Values: values}
}

// Rank returns the 1-based rank of each value of x, giving tied values the
// average of the ranks they span.
func Rank(x []float64) []float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	ranks := make([]float64, len(x))
	for start := 0; start < len(idx); {
		end := start + 1
		for end < len(idx) && x[idx[end]] == x[idx[start]] {
			end++
		}
		avg := float64(start+end+1) / 2
		for k := start; k < end; k++ {
			ranks[idx[k]] = avg
		}
		start = end
	}
	return ranks
}

func column(records []dataset.Record, m Metric) []float64 {
	x := make([]float64, len(records))
	for i, r := range records {
		x[i] = m.Value(r)
	}
	return x
}
