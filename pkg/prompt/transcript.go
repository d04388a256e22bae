package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chembench/molprop/pkg/errors"
)

const blockSeparator = "=================================================="

// Entry is one trial in a transcript: what was asked, the ground truth, and
// the raw model reply.
type Entry struct {
	Iteration int
	SMILES    string
	TrueValue float64
	// Response is the verbatim model output, or an "Error: ..." line when
	// the request failed after retries.
	Response string
}

// TranscriptWriter appends entries to a plain-text transcript, flushing
// after each one so a crashed run keeps everything finished so far.
type TranscriptWriter struct {
	f *os.File
	w *bufio.Writer
}

// NewTranscriptWriter creates path (and parents) and truncates any previous
// transcript there.
func NewTranscriptWriter(path string) (*TranscriptWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, errors.ConfigurationError, "cannot create transcript directory")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ConfigurationError, "cannot create transcript file")
	}
	return &TranscriptWriter{f: f, w: bufio.NewWriter(f)}, nil
}

// Append writes one entry and flushes it to disk.
func (t *TranscriptWriter) Append(e Entry) error {
	fmt.Fprintf(t.w, "Iteration: %d\n", e.Iteration)
	fmt.Fprintf(t.w, "SMILES: %s\n", e.SMILES)
	fmt.Fprintf(t.w, "True Property: %s\n", strconv.FormatFloat(e.TrueValue, 'g', -1, 64))
	fmt.Fprintf(t.w, "Predicted Property:\n%s\n", e.Response)
	fmt.Fprintln(t.w, blockSeparator)
	if err := t.w.Flush(); err != nil {
		return errors.Wrap(err, errors.Unknown, "transcript flush failed")
	}
	return t.f.Sync()
}

func (t *TranscriptWriter) Close() error {
	if err := t.w.Flush(); err != nil {
		return err
	}
	return t.f.Close()
}

// ReadTranscript parses a transcript back into entries. Malformed blocks are
// skipped rather than failing the whole file, since transcripts may end
// mid-block after an interrupted run.
func ReadTranscript(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var entries []Entry
	var cur *Entry
	var response []string
	inResponse := false

	flush := func() {
		if cur == nil {
			return
		}
		cur.Response = strings.TrimRight(strings.Join(response, "\n"), "\n")
		if cur.Iteration > 0 && cur.SMILES != "" {
			entries = append(entries, *cur)
		}
		cur = nil
		response = nil
		inResponse = false
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "Iteration: "):
			flush()
			n, err := strconv.Atoi(strings.TrimPrefix(line, "Iteration: "))
			if err != nil {
				continue
			}
			cur = &Entry{Iteration: n}
		case cur != nil && !inResponse && strings.HasPrefix(line, "SMILES: "):
			cur.SMILES = strings.TrimPrefix(line, "SMILES: ")
		case cur != nil && !inResponse && strings.HasPrefix(line, "True Property: "):
			v, err := strconv.ParseFloat(strings.TrimPrefix(line, "True Property: "), 64)
			if err == nil {
				cur.TrueValue = v
			}
		case cur != nil && line == "Predicted Property:":
			inResponse = true
		case strings.HasPrefix(line, blockSeparator):
			flush()
		case inResponse:
			response = append(response, line)
		}
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "transcript read failed")
	}
	return entries, nil
}

// ReadTranscriptFile opens and parses a transcript from disk.
func ReadTranscriptFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ConfigurationError, "cannot open transcript")
	}
	defer f.Close()
	return ReadTranscript(f)
}
