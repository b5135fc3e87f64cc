package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/sirseerhq/sirseer-survey/internal/dataset"
	surveyerrors "github.com/sirseerhq/sirseer-survey/internal/errors"
	"github.com/sirseerhq/sirseer-survey/internal/github"
	"github.com/sirseerhq/sirseer-survey/internal/metadata"
	"github.com/sirseerhq/sirseer-survey/internal/output"
)

type fakeInspector struct {
	repos map[string]*github.RepositoryInfo
	calls []string
}

func (f *fakeInspector) GetRepositoryInfo(ctx context.Context, owner, repo string) (*github.RepositoryInfo, error) {
	f.calls = append(f.calls, owner+"/"+repo)
	info, ok := f.repos[owner+"/"+repo]
	if !ok {
		return nil, surveyerrors.ErrRepoNotFound
	}
	return info, nil
}

func sampleRecords() []dataset.Record {
	return []dataset.Record{
		{Repository: "acme/a", Status: "MERGED", AnalysisTimeHours: 2, SizeFiles: 1, SizeAdditions: 10, SizeDeletions: 2, ReviewsCount: 1},
		{Repository: "acme/a", Status: "MERGED", AnalysisTimeHours: 4, SizeFiles: 3, SizeAdditions: 30, SizeDeletions: 4, ReviewsCount: 2},
		{Repository: "acme/b", Status: "CLOSED", AnalysisTimeHours: 8, SizeFiles: 2, SizeAdditions: 5, SizeDeletions: 5, ReviewsCount: 1},
	}
}

func TestRunInspect(t *testing.T) {
	inspector := &fakeInspector{repos: map[string]*github.RepositoryInfo{
		"acme/big":   {NameWithOwner: "acme/big", Stars: 1200, TotalPullRequests: 340},
		"acme/small": {NameWithOwner: "acme/small", Stars: 15, IsArchived: true, TotalPullRequests: 99},
	}}

	var out bytes.Buffer
	if err := runInspect(context.Background(), inspector, []string{"acme/big", "acme/small"}, 100, &out); err != nil {
		t.Fatalf("runInspect failed: %v", err)
	}

	lines := strings.Split(out.String(), "\n")
	var big, small string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "acme/big"):
			big = l
		case strings.Contains(l, "acme/small"):
			small = l
		}
	}
	if !strings.Contains(big, "340") || !strings.Contains(big, "yes") {
		t.Errorf("acme/big row = %q", big)
	}
	if !strings.Contains(small, "99") || !strings.Contains(small, "no") || !strings.Contains(small, "true") {
		t.Errorf("acme/small row = %q", small)
	}
}

func TestRunInspect_ValidatesBeforeCalling(t *testing.T) {
	inspector := &fakeInspector{}

	err := runInspect(context.Background(), inspector, []string{"acme/ok", "broken"}, 100, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "invalid repository format") {
		t.Fatalf("error = %v, want format error", err)
	}
	if len(inspector.calls) != 0 {
		t.Errorf("calls = %v, want none", inspector.calls)
	}
}

func TestRunInspect_NotFound(t *testing.T) {
	err := runInspect(context.Background(), &fakeInspector{}, []string{"no/such"}, 100, &bytes.Buffer{})
	if !errors.Is(err, surveyerrors.ErrRepoNotFound) {
		t.Errorf("error = %v, want ErrRepoNotFound", err)
	}
	if mapErrorToExitCode(err) != 2 {
		t.Errorf("exit code = %d, want 2", mapErrorToExitCode(err))
	}
}

func TestRunSummarize(t *testing.T) {
	var out bytes.Buffer
	if err := runSummarize(sampleRecords(), &out, false, false); err != nil {
		t.Fatalf("runSummarize failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Medians by status (3 pull requests)", "CLOSED", "MERGED", "size_lines_total", "3.00"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Spearman") || strings.Contains(got, "Column statistics") {
		t.Errorf("optional sections printed without flags:\n%s", got)
	}
}

func TestRunSummarize_AllSections(t *testing.T) {
	var out bytes.Buffer
	if err := runSummarize(sampleRecords(), &out, true, true); err != nil {
		t.Fatalf("runSummarize failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Column statistics", "Spearman rank correlation", "reviews_count", "1.00"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunCombine(t *testing.T) {
	dir := t.TempDir()
	recs := sampleRecords()
	if err := output.WriteArtifact(output.ArtifactPath(dir, "acme", "a"), recs[:2]); err != nil {
		t.Fatal(err)
	}
	if err := output.WriteArtifact(output.ArtifactPath(dir, "acme", "b"), recs[2:]); err != nil {
		t.Fatal(err)
	}
	if err := output.WriteArtifact(output.ArtifactPath(dir, "acme", "empty"), nil); err != nil {
		t.Fatal(err)
	}

	target := filepath.Join(t.TempDir(), "dataset.csv")
	var out bytes.Buffer
	if err := runCombine(dir, target, zap.NewNop().Sugar(), &out); err != nil {
		t.Fatalf("runCombine failed: %v", err)
	}

	if !strings.Contains(out.String(), "Wrote 3 records from 2 files") {
		t.Errorf("output = %q", out.String())
	}
	got, err := output.ReadRecords(target)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("records = %d, want 3", len(got))
	}
}

func TestRunCombine_Nothing(t *testing.T) {
	var out bytes.Buffer
	target := filepath.Join(t.TempDir(), "dataset.csv")
	if err := runCombine(t.TempDir(), target, zap.NewNop().Sugar(), &out); err != nil {
		t.Fatalf("runCombine failed: %v", err)
	}
	if !strings.Contains(out.String(), "nothing written") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunExport(t *testing.T) {
	input := filepath.Join(t.TempDir(), "dataset.csv")
	if err := output.WriteArtifact(input, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	db := filepath.Join(t.TempDir(), "survey.db")

	for i := 0; i < 2; i++ {
		var out bytes.Buffer
		if err := runExport(context.Background(), input, db, zap.NewNop().Sugar(), &out); err != nil {
			t.Fatalf("runExport #%d failed: %v", i+1, err)
		}
		got := out.String()
		if !strings.Contains(got, "Exported 3 records") || !strings.Contains(got, "MERGED: 2") || !strings.Contains(got, "CLOSED: 1") {
			t.Errorf("export #%d output = %q", i+1, got)
		}
	}
}

func TestRunExport_EmptyDataset(t *testing.T) {
	input := filepath.Join(t.TempDir(), "dataset.csv")
	if err := output.WriteArtifact(input, nil); err != nil {
		t.Fatal(err)
	}
	if err := runExport(context.Background(), input, filepath.Join(t.TempDir(), "x.db"), zap.NewNop().Sugar(), &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for empty dataset")
	}
}

func TestRunStatus(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer
	if err := runStatus(dir, &out, false, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No runs recorded") {
		t.Errorf("output = %q", out.String())
	}

	tracker := metadata.New()
	tracker.SetCandidates(2)
	tracker.RecordRepository(metadata.RepositoryResult{Repository: "acme/a", Outcome: metadata.OutcomeWritten, Records: 4})
	tracker.RecordRepository(metadata.RepositoryResult{Repository: "acme/b", Outcome: metadata.OutcomeFailed, Error: "boom"})
	if _, err := metadata.SaveMetadata(tracker.GenerateMetadata("test", metadata.RunParams{}), dir); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := runStatus(dir, &out, false, true); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.Contains(got, "written: 1") || !strings.Contains(got, "failed: 1") {
		t.Errorf("summary line missing: %q", got)
	}
	if !strings.Contains(got, "boom") || strings.Contains(got, "acme/a ") {
		t.Errorf("--failed should list only acme/b: %q", got)
	}

	out.Reset()
	if err := runStatus(dir, &out, true, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), tracker.RunID()) {
		t.Errorf("json output missing run id: %q", out.String())
	}
}
