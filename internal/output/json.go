package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONFormatter emits reports as indented JSON documents, one per call.
// Field names are part of the CLI contract and stay stable across releases.
type JSONFormatter struct{}

func (f *JSONFormatter) Files(w io.Writer, report *FilesReport) error {
	return writeJSON(w, report)
}

func (f *JSONFormatter) Commits(w io.Writer, report *CommitsReport) error {
	return writeJSON(w, report)
}

func (f *JSONFormatter) Backups(w io.Writer, report *BackupsReport) error {
	return writeJSON(w, report)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
