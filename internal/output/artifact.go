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

package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/sirseerhq/sirseer-survey/internal/dataset"
	surveyerrors "github.com/sirseerhq/sirseer-survey/internal/errors"
)

// ArtifactPath returns the per-repository dataset file for owner/name.
func ArtifactPath(dir, owner, name string) string {
	return filepath.Join(dir, owner+"-"+name+".csv")
}

// ArtifactExists reports whether a repository has already been processed.
// Presence alone counts, including the zero-byte empty marker.
func ArtifactExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteArtifact atomically writes records to path. With no records the file
// is created empty, marking the repository as processed with nothing kept.
func WriteArtifact(path string, records []dataset.Record) error {
	return WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		cw := NewWriter(w)
		if err := writeRecords(cw, records); err != nil {
			return err
		}
		return cw.Close()
	})
}

func writeRecords(rw RecordWriter, records []dataset.Record) error {
	for _, rec := range records {
		if err := rw.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// ReadRecords parses a dataset file. Zero-byte and header-only files yield no
// records. A header that differs from dataset.Columns is ErrHeaderMismatch.
func ReadRecords(path string) ([]dataset.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	if !slices.Equal(header, dataset.Columns) {
		return nil, fmt.Errorf("%s: %w", path, surveyerrors.ErrHeaderMismatch)
	}

	var records []dataset.Record
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		rec, err := dataset.ParseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// CombineResult summarizes a Combine run.
type CombineResult struct {
	Files   int
	Skipped int
	Records int
}

var errNothingToCombine = errors.New("no records to combine")

// Combine concatenates every per-repository dataset in inputDir, in lexical
// file order, into outputFile with a single header. Files are streamed one at
// a time and empty ones are skipped. When nothing qualifies no output is
// written and the result reports zero records.
func Combine(inputDir, outputFile string, log *zap.SugaredLogger) (CombineResult, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	var res CombineResult
	files, err := filepath.Glob(filepath.Join(inputDir, "*.csv"))
	if err != nil {
		return res, fmt.Errorf("failed to list %s: %w", inputDir, err)
	}
	sort.Strings(files)

	outAbs, _ := filepath.Abs(outputFile)
	inputs := files[:0]
	for _, path := range files {
		if abs, _ := filepath.Abs(path); abs != outAbs {
			inputs = append(inputs, path)
		}
	}

	err = WriteFileAtomic(outputFile, 0o644, func(w io.Writer) error {
		cw := NewWriter(w)
		if err := combineInto(cw, inputs, &res, log); err != nil {
			return err
		}
		if err := cw.Close(); err != nil {
			return err
		}
		res.Records = cw.Count()
		if res.Records == 0 {
			return errNothingToCombine
		}
		return nil
	})
	if errors.Is(err, errNothingToCombine) {
		log.Warnw("no records to combine", "dir", inputDir, "files", res.Files)
		return res, nil
	}
	if err != nil {
		return res, err
	}

	log.Infow("combined dataset written",
		"file", outputFile,
		"files", res.Files,
		"skipped", res.Skipped,
		"records", res.Records)
	return res, nil
}

// combineInto streams the records of each file in files into rw.
func combineInto(rw RecordWriter, files []string, res *CombineResult, log *zap.SugaredLogger) error {
	for _, path := range files {
		res.Files++

		records, err := ReadRecords(path)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			res.Skipped++
			log.Warnw("skipping empty dataset file", "file", filepath.Base(path))
			continue
		}
		if err := writeRecords(rw, records); err != nil {
			return err
		}
	}
	return nil
}
