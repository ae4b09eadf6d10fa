// Package ingest turns uploaded or on-disk file payloads into normalized
// sessions. Every file is processed in isolation: a corrupt archive or an
// unreadable member yields its own error entry and never aborts siblings.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/MikeSquared-Agency/tally/internal/transcript"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// File is one named payload to ingest.
type File struct {
	Name    string
	Content []byte
}

// FileResult reports the outcome of ingesting one file (or one archive
// member). Key names are part of the external progress/error contract.
type FileResult struct {
	Filename        string `json:"filename"`
	TranscriptCount int    `json:"transcriptCount"`
	Status          string `json:"status"`
	Error           string `json:"error,omitempty"`
}

// textExtensions are the accepted plain-content types. Anything else is
// rejected before parsing with a user-visible message.
var textExtensions = map[string]bool{
	".txt":  true,
	".log":  true,
	".json": true,
}

// maxArchiveMemberSize bounds decompression of a single zip member.
const maxArchiveMemberSize = 64 << 20

// Process ingests a batch of files and returns the combined normalized
// session list plus a per-file result for progress display. Session order
// follows file order; order across files carries no meaning downstream.
func Process(files []File) ([]transcript.Session, []FileResult) {
	var sessions []transcript.Session
	results := make([]FileResult, 0, len(files))

	for _, f := range files {
		ext := strings.ToLower(path.Ext(f.Name))
		switch {
		case ext == ".zip":
			zipSessions, zipResults := processArchive(f)
			sessions = append(sessions, zipSessions...)
			results = append(results, zipResults...)
		case textExtensions[ext]:
			parsed := transcript.NormalizeAll(transcript.Parse(f.Content, f.Name))
			sessions = append(sessions, parsed...)
			results = append(results, FileResult{
				Filename:        f.Name,
				TranscriptCount: len(parsed),
				Status:          StatusSuccess,
			})
		default:
			results = append(results, FileResult{
				Filename: f.Name,
				Status:   StatusError,
				Error:    fmt.Sprintf("unsupported file type %q: expected .txt, .log, .json or .zip", ext),
			})
		}
	}

	return sessions, results
}

// processArchive expands a zip payload and ingests each member as a virtual
// file. Member failures are isolated exactly like top-level file failures.
func processArchive(f File) ([]transcript.Session, []FileResult) {
	reader, err := zip.NewReader(bytes.NewReader(f.Content), int64(len(f.Content)))
	if err != nil {
		return nil, []FileResult{{
			Filename: f.Name,
			Status:   StatusError,
			Error:    fmt.Sprintf("cannot open archive: %v", err),
		}}
	}

	var sessions []transcript.Session
	var results []FileResult

	for _, member := range reader.File {
		if member.FileInfo().IsDir() {
			continue
		}
		name := f.Name + "/" + member.Name
		ext := strings.ToLower(path.Ext(member.Name))
		if !textExtensions[ext] {
			results = append(results, FileResult{
				Filename: name,
				Status:   StatusError,
				Error:    fmt.Sprintf("unsupported archive member type %q", ext),
			})
			continue
		}

		content, err := readMember(member)
		if err != nil {
			results = append(results, FileResult{
				Filename: name,
				Status:   StatusError,
				Error:    fmt.Sprintf("cannot read archive member: %v", err),
			})
			continue
		}

		parsed := transcript.NormalizeAll(transcript.Parse(content, member.Name))
		sessions = append(sessions, parsed...)
		results = append(results, FileResult{
			Filename:        name,
			TranscriptCount: len(parsed),
			Status:          StatusSuccess,
		})
	}

	return sessions, results
}

func readMember(member *zip.File) ([]byte, error) {
	rc, err := member.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxArchiveMemberSize))
}
