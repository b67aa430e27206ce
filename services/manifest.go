package services

import (
	"encoding/csv"
	"io"
)

// ManifestWriter writes the organizer-only team_id,password file. Every
// line is flushed immediately so the file reflects what was generated even
// if the import fails afterwards.
type ManifestWriter struct {
	w     *csv.Writer
	lines int
}

func NewManifestWriter(out io.Writer) *ManifestWriter {
	return &ManifestWriter{w: csv.NewWriter(out)}
}

func (m *ManifestWriter) WriteHeader() error {
	return m.write([]string{"team_id", "password"})
}

func (m *ManifestWriter) WriteCredential(teamID, password string) error {
	if err := m.write([]string{teamID, password}); err != nil {
		return err
	}
	m.lines++
	return nil
}

// Lines is the number of credential lines written, header excluded
func (m *ManifestWriter) Lines() int {
	return m.lines
}

func (m *ManifestWriter) write(record []string) error {
	if err := m.w.Write(record); err != nil {
		return err
	}
	m.w.Flush()
	return m.w.Error()
}
