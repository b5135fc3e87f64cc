package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/sirseerhq/sirseer-survey/internal/dataset"
)

const header = "repository,status,analysis_time_hours,size_files,size_additions,size_deletions,description_chars,interaction_participants,interaction_comments,reviews_count"

func sampleRecord(repo string, additions int) dataset.Record {
	return dataset.Record{
		Repository:              repo,
		Status:                  "MERGED",
		AnalysisTimeHours:       2.5,
		SizeFiles:               3,
		SizeAdditions:           additions,
		SizeDeletions:           4,
		DescriptionChars:        42,
		InteractionParticipants: 2,
		InteractionComments:     1,
		ReviewsCount:            1,
	}
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	if writer == nil {
		t.Fatal("NewWriter returned nil")
	}
	if writer.Count() != 0 {
		t.Errorf("Initial count should be 0, got %d", writer.Count())
	}

	var _ RecordWriter = writer
}

func TestWriter_Write(t *testing.T) {
	tests := []struct {
		name    string
		records []dataset.Record
		want    []string
	}{
		{
			name:    "no records",
			records: nil,
			want:    nil,
		},
		{
			name:    "single record",
			records: []dataset.Record{sampleRecord("golang/go", 10)},
			want: []string{
				header,
				"golang/go,MERGED,2.5,3,10,4,42,2,1,1",
			},
		},
		{
			name: "multiple records",
			records: []dataset.Record{
				sampleRecord("golang/go", 10),
				sampleRecord("golang/go", 20),
			},
			want: []string{
				header,
				"golang/go,MERGED,2.5,3,10,4,42,2,1,1",
				"golang/go,MERGED,2.5,3,20,4,42,2,1,1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writer := NewWriter(&buf)

			for _, rec := range tt.records {
				if err := writer.Write(rec); err != nil {
					t.Fatalf("Write failed: %v", err)
				}
			}
			if err := writer.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			if len(tt.want) == 0 {
				if buf.Len() != 0 {
					t.Errorf("expected empty output, got %q", buf.String())
				}
				return
			}

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if len(lines) != len(tt.want) {
				t.Fatalf("Expected %d lines, got %d", len(tt.want), len(lines))
			}
			for i, line := range lines {
				if line != tt.want[i] {
					t.Errorf("Line %d: expected %q, got %q", i, tt.want[i], line)
				}
			}
			if writer.Count() != len(tt.records) {
				t.Errorf("Count = %d, want %d", writer.Count(), len(tt.records))
			}
		})
	}
}

func TestWriter_QuotesFields(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)
	rec := sampleRecord(`odd,"name"`, 1)
	if err := writer.Write(rec); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"odd,""name"""`) {
		t.Errorf("expected quoted repository field, got %q", buf.String())
	}
}

func TestWriter_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if err := writer.Write(sampleRecord("o/r", id*10+j)); err != nil {
					t.Errorf("Write failed: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	if writer.Count() != 100 {
		t.Errorf("Expected count 100, got %d", writer.Count())
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 101 {
		t.Errorf("Expected 101 lines, got %d", len(lines))
	}
	if lines[0] != header {
		t.Errorf("first line = %q, want header", lines[0])
	}
}
