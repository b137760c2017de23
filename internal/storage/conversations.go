// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/jeranaias/hfchat-tui/internal/model"
	"github.com/jeranaias/hfchat-tui/internal/util"
)

// DefaultName is the file used by /save and /load without an argument and
// by the quick-save key.
const DefaultName = "conversation.json"

// lockName is the lock file shared by every hfchat process using a
// directory.
const lockName = ".hfchat.lock"

// =============================================================================
// CONVERSATION METADATA
// =============================================================================

// ConversationMeta contains metadata for listing conversations.
type ConversationMeta struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	ModTime      time.Time `json:"mod_time"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"` // First user message truncated
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore saves and loads named conversations as JSON arrays of
// messages. Writes are atomic and serialized across processes by a lock
// file in BaseDir.
type ConversationStore struct {
	// BaseDir is the directory for storing conversations
	// Default: ~/.hfchat/conversations/
	BaseDir string

	mu   sync.Mutex
	lock *flock.Flock
}

// NewConversationStore creates a store under ~/.hfchat/conversations.
func NewConversationStore() (*ConversationStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewConversationStoreWithDir(filepath.Join(homeDir, ".hfchat", "conversations"))
}

// NewConversationStoreWithDir creates a store with a custom directory.
func NewConversationStoreWithDir(baseDir string) (*ConversationStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, &ConversationError{Op: "init", Name: baseDir, Err: err}
	}
	return &ConversationStore{
		BaseDir: baseDir,
		lock:    flock.New(filepath.Join(baseDir, lockName)),
	}, nil
}

// =============================================================================
// SAVE / LOAD
// =============================================================================

// Save writes msgs under name and returns the file path.
func (s *ConversationStore) Save(name string, msgs []model.Message) (string, error) {
	name, path, err := s.resolve(name)
	if err != nil {
		return "", &ConversationError{Op: "save", Name: name, Err: err}
	}

	if msgs == nil {
		msgs = []model.Message{}
	}
	data, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return "", &ConversationError{Op: "save", Name: name, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.Lock(); err != nil {
		return "", &ConversationError{Op: "save", Name: name, Err: fmt.Errorf("lock: %w", err)}
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := util.AtomicWriteFile(path, data, 0o644); err != nil {
		return "", &ConversationError{Op: "save", Name: name, Err: err}
	}
	return path, nil
}

// Load reads the conversation stored under name.
func (s *ConversationStore) Load(name string) ([]model.Message, error) {
	name, path, err := s.resolve(name)
	if err != nil {
		return nil, &ConversationError{Op: "load", Name: name, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.RLock(); err != nil {
		return nil, &ConversationError{Op: "load", Name: name, Err: fmt.Errorf("lock: %w", err)}
	}
	defer func() { _ = s.lock.Unlock() }()

	msgs, err := readMessages(path)
	if err != nil {
		return nil, &ConversationError{Op: "load", Name: name, Err: err}
	}
	return msgs, nil
}

func readMessages(path string) ([]model.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	var msgs []model.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	for i, msg := range msgs {
		if !msg.Role.Valid() {
			return nil, fmt.Errorf("%w: message %d has role %q", ErrCorrupt, i, msg.Role)
		}
	}
	return msgs, nil
}

// =============================================================================
// LIST / DELETE
// =============================================================================

// List returns all saved conversations, most recently modified first.
// Unreadable files are skipped.
func (s *ConversationStore) List() ([]ConversationMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ConversationMeta{}, nil
		}
		return nil, &ConversationError{Op: "list", Name: s.BaseDir, Err: err}
	}

	metas := []ConversationMeta{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(s.BaseDir, entry.Name())
		msgs, err := readMessages(path)
		if err != nil {
			continue // Skip corrupted files
		}

		preview := ""
		for _, msg := range msgs {
			if msg.Role == model.RoleUser {
				preview = msg.Preview(80)
				break
			}
		}

		metas = append(metas, ConversationMeta{
			Name:         entry.Name(),
			Path:         path,
			ModTime:      info.ModTime(),
			MessageCount: len(msgs),
			Preview:      preview,
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		if metas[i].ModTime.Equal(metas[j].ModTime) {
			return metas[i].Name < metas[j].Name
		}
		return metas[i].ModTime.After(metas[j].ModTime)
	})
	return metas, nil
}

// Delete removes a saved conversation.
func (s *ConversationStore) Delete(name string) error {
	name, path, err := s.resolve(name)
	if err != nil {
		return &ConversationError{Op: "delete", Name: name, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.Lock(); err != nil {
		return &ConversationError{Op: "delete", Name: name, Err: fmt.Errorf("lock: %w", err)}
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return &ConversationError{Op: "delete", Name: name, Err: ErrConversationNotFound}
		}
		return &ConversationError{Op: "delete", Name: name, Err: err}
	}
	return nil
}

// Path returns the file path that name resolves to.
func (s *ConversationStore) Path(name string) (string, error) {
	_, path, err := s.resolve(name)
	return path, err
}

// =============================================================================
// NAMES
// =============================================================================

// NormalizeName applies the naming rules: empty means DefaultName, a
// missing extension gets ".json", and names must be plain file names.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName, nil
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return name, ErrInvalidName
	}
	if strings.ContainsRune(name, 0) {
		return name, ErrInvalidName
	}
	if filepath.Ext(name) == "" {
		name += ".json"
	}
	return name, nil
}

func (s *ConversationStore) resolve(name string) (string, string, error) {
	n, err := NormalizeName(name)
	if err != nil {
		return n, "", err
	}
	return n, filepath.Join(s.BaseDir, n), nil
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrConversationNotFound is returned when a conversation doesn't exist.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrInvalidName is returned for names containing path separators or
	// starting with a dot.
	ErrInvalidName = errors.New("invalid conversation name")

	// ErrCorrupt is returned when a file is not a valid message list.
	ErrCorrupt = errors.New("invalid conversation file")
)

// ConversationError records the operation and name that failed.
type ConversationError struct {
	Op   string
	Name string
	Err  error
}

// Error implements the error interface.
func (e *ConversationError) Error() string {
	if e.Name == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Name + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ConversationError) Unwrap() error {
	return e.Err
}

// =============================================================================
// LIST FORMATTING
// =============================================================================

// FormatList formats conversations as a table with name, modification
// time, message count and preview.
func FormatList(metas []ConversationMeta) string {
	if len(metas) == 0 {
		return "No saved conversations."
	}

	var sb strings.Builder
	sb.WriteString(util.PadRight("NAME", 24) + " " + util.PadRight("MODIFIED", 16) + " " + util.PadRight("MSGS", 5) + " PREVIEW\n")
	for _, m := range metas {
		sb.WriteString(util.PadRight(util.TruncateRunes(m.Name, 24), 24) + " " +
			util.PadRight(m.ModTime.Format("2006-01-02 15:04"), 16) + " " +
			util.PadRight(util.IntToStr(m.MessageCount), 5) + " " +
			util.TruncateRunes(util.SingleLine(m.Preview), 40) + "\n")
	}
	return sb.String()
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders a conversation as Markdown with one section per
// message. Reasoning is included as a blockquote.
func ExportMarkdown(title string, msgs []model.Message) string {
	var sb strings.Builder
	sb.WriteString("# " + title + "\n\n")

	for _, msg := range msgs {
		sb.WriteString("## " + msg.Role.DisplayName() + " (" + msg.Clock() + ")\n\n")
		if msg.HasReasoning() {
			for _, line := range strings.Split(msg.Reasoning, "\n") {
				sb.WriteString("> " + line + "\n")
			}
			sb.WriteString("\n")
		}
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
