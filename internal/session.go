package internal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// SessionsDir is where rename journals live, relative to the destination.
const SessionsDir = ".photoname/sessions"

// RenameSession journals one rename run as JSON lines.
type RenameSession struct {
	ID          string // 2025-01-15-103045-<run id prefix>
	RunID       string
	Destination string
	SessionDir  string
	journal     *os.File
	stats       RenameStats
}

// RenameStats counts what a rename run did.
type RenameStats struct {
	Planned          int `json:"planned"`
	Moved            int `json:"moved"`
	Suffixed         int `json:"suffixed"`
	Unchanged        int `json:"unchanged"`
	SkippedDuplicate int `json:"skipped_duplicate"`
	Sidecars         int `json:"sidecars"`
	Errors           int `json:"errors"`
}

// JournalEvent is a single line of journal.jsonl.
type JournalEvent struct {
	Event    string `json:"event"`
	Ts       string `json:"ts"`
	RunID    string `json:"run_id"`
	Src      string `json:"src,omitempty"`
	Dest     string `json:"dest,omitempty"`
	Hash     string `json:"hash,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Existing string `json:"existing,omitempty"`
	Error    string `json:"error,omitempty"`

	ErrorCategory   string `json:"error_category,omitempty"`
	ErrorSeverity   string `json:"error_severity,omitempty"`
	ErrorSuggestion string `json:"error_suggestion,omitempty"`

	Destination string       `json:"destination,omitempty"`
	Stats       *RenameStats `json:"stats,omitempty"`
}

// NewRenameSession creates <destination>/.photoname/sessions/<id>/journal.jsonl.
func NewRenameSession(destination string) (*RenameSession, error) {
	runID := uuid.NewString()
	sessionID := time.Now().Format("2006-01-02-150405") + "-" + runID[:8]
	sessionDir := filepath.Join(destination, SessionsDir, sessionID)

	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	journalPath := filepath.Join(sessionDir, "journal.jsonl")
	journal, err := os.OpenFile(journalPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal: %w", err)
	}

	return &RenameSession{
		ID:          sessionID,
		RunID:       runID,
		Destination: destination,
		SessionDir:  sessionDir,
		journal:     journal,
	}, nil
}

func (s *RenameSession) LogSessionStart(planned int) error {
	s.stats.Planned = planned
	return s.writeEvent(JournalEvent{
		Event:       "session_start",
		Destination: s.Destination,
		Stats:       &RenameStats{Planned: planned},
	})
}

// LogMoved records a media file move. suffixed is set when the planned name
// was taken by a different file.
func (s *RenameSession) LogMoved(src, dest, hash string, size int64, suffixed bool) error {
	event := "moved"
	s.stats.Moved++
	if suffixed {
		event = "moved_suffixed"
		s.stats.Suffixed++
	}
	return s.writeEvent(JournalEvent{
		Event: event,
		Src:   src,
		Dest:  dest,
		Hash:  hash,
		Size:  size,
	})
}

func (s *RenameSession) LogSidecar(src, dest string) error {
	s.stats.Sidecars++
	return s.writeEvent(JournalEvent{Event: "sidecar_moved", Src: src, Dest: dest})
}

func (s *RenameSession) LogUnchanged(path string) error {
	s.stats.Unchanged++
	return s.writeEvent(JournalEvent{Event: "unchanged", Src: path})
}

func (s *RenameSession) LogSkippedDuplicate(src, existing, hash string) error {
	s.stats.SkippedDuplicate++
	return s.writeEvent(JournalEvent{
		Event:    "skipped_duplicate",
		Src:      src,
		Existing: existing,
		Hash:     hash,
	})
}

func (s *RenameSession) LogError(procErr *ProcessError) error {
	s.stats.Errors++

	event := JournalEvent{
		Event:           "error",
		Src:             procErr.FilePath,
		Error:           procErr.OriginalErr.Error(),
		ErrorCategory:   string(procErr.Category),
		ErrorSeverity:   string(procErr.Severity),
		ErrorSuggestion: procErr.Suggestion,
	}
	if dest, ok := procErr.Context["dest"]; ok {
		event.Dest = dest
	}
	return s.writeEvent(event)
}

func (s *RenameSession) LogSessionEnd() error {
	stats := s.stats
	return s.writeEvent(JournalEvent{Event: "session_end", Stats: &stats})
}

func (s *RenameSession) Stats() RenameStats {
	return s.stats
}

func (s *RenameSession) Close() error {
	if s.journal != nil {
		return s.journal.Close()
	}
	return nil
}

func (s *RenameSession) writeEvent(event JournalEvent) error {
	event.Ts = time.Now().UTC().Format(time.RFC3339)
	event.RunID = s.RunID

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := s.journal.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write to journal: %w", err)
	}
	// a crash must not lose moves already done
	return s.journal.Sync()
}

// ReadJournal loads every event of a journal file.
func ReadJournal(path string) ([]JournalEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []JournalEvent
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var ev JournalEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		events = append(events, ev)
	}
	return events, scanner.Err()
}
