package importer

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/cleared-dev/spendmigrate/internal/model"
	"github.com/cleared-dev/spendmigrate/internal/profile"
)

// JSONLParser parses exports with one profile document per line.
type JSONLParser struct{}

const maxLineBytes = 1 << 20

// Format returns the parser name.
func (p *JSONLParser) Format() string { return "jsonl" }

// Extension returns the handled file extension.
func (p *JSONLParser) Extension() string { return ".jsonl" }

// Parse reads profile documents; blank lines are skipped.
func (p *JSONLParser) Parse(r io.Reader) ([]model.Profile, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var profiles []model.Profile
	line := 0
	for sc.Scan() {
		line++
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 {
			continue
		}
		prof, err := profile.DecodeProfile(data)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if prof.UserID == "" {
			return nil, fmt.Errorf("line %d: missing user_id", line)
		}
		profiles = append(profiles, prof)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading jsonl: %w", err)
	}
	return profiles, nil
}
