package batch

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contract-sentinel/constants"
	"github.com/joseph-ayodele/contract-sentinel/internal/common"
	"github.com/joseph-ayodele/contract-sentinel/internal/entity"
)

// Manager holds the ordered pages awaiting recognition. The order only changes
// through MoveUp, MoveDown and Remove (or their ByID forms).
type Manager struct {
	mu     sync.RWMutex
	pages  []entity.PendingPage
	logger *slog.Logger
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// Add appends a page. It never rejects: no dedup, type or size checks here.
func (m *Manager) Add(name string, content []byte) entity.PendingPage {
	buf := make([]byte, len(content))
	copy(buf, content)
	p := entity.PendingPage{
		ID:          uuid.New(),
		DisplayName: name,
		ByteSize:    int64(len(buf)),
		Content:     buf,
	}

	m.mu.Lock()
	m.pages = append(m.pages, p)
	n := len(m.pages)
	m.mu.Unlock()

	m.logger.Debug("batch.add", "page_id", p.ID, "name", name, "bytes", p.ByteSize, "pages", n)
	return p
}

// AddFile reads a page from disk and appends it under its base name.
func (m *Manager) AddFile(path string) (entity.PendingPage, error) {
	if !constants.IsAllowedExt(filepath.Ext(path)) {
		return entity.PendingPage{}, fmt.Errorf("%w: unsupported page type %q", common.ErrInvalidInput, filepath.Ext(path))
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return entity.PendingPage{}, fmt.Errorf("read page: %w", err)
	}
	return m.Add(filepath.Base(path), b), nil
}

// MoveUp swaps page i with its predecessor. Index 0 is a no-op.
func (m *Manager) MoveUp(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moveUp(i)
}

// MoveDown swaps page i with its successor. The last index is a no-op.
func (m *Manager) MoveDown(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moveDown(i)
}

// Remove deletes page i and shifts later pages down by one.
func (m *Manager) Remove(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remove(i)
}

// MoveUpByID moves the page with the given id one position up.
func (m *Manager) MoveUpByID(id uuid.UUID) error {
	return m.byID(id, m.moveUp)
}

// MoveDownByID moves the page with the given id one position down.
func (m *Manager) MoveDownByID(id uuid.UUID) error {
	return m.byID(id, m.moveDown)
}

// RemoveByID removes the page with the given id.
func (m *Manager) RemoveByID(id uuid.UUID) error {
	return m.byID(id, m.remove)
}

// IndexOf returns the current position of id.
func (m *Manager) IndexOf(id uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indexOf(id)
}

// byID resolves the index and applies op under one lock.
func (m *Manager) byID(id uuid.UUID, op func(int) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.indexOf(id)
	if err != nil {
		return err
	}
	return op(i)
}

// The lower-case operations below expect m.mu to be held.

func (m *Manager) moveUp(i int) error {
	if err := m.checkIndex(i); err != nil {
		return err
	}
	if i == 0 {
		return nil
	}
	m.pages[i-1], m.pages[i] = m.pages[i], m.pages[i-1]
	return nil
}

func (m *Manager) moveDown(i int) error {
	if err := m.checkIndex(i); err != nil {
		return err
	}
	if i == len(m.pages)-1 {
		return nil
	}
	m.pages[i], m.pages[i+1] = m.pages[i+1], m.pages[i]
	return nil
}

func (m *Manager) remove(i int) error {
	if err := m.checkIndex(i); err != nil {
		return err
	}
	removed := m.pages[i]
	m.pages = append(m.pages[:i:i], m.pages[i+1:]...)
	m.logger.Debug("batch.remove", "page_id", removed.ID, "index", i, "pages", len(m.pages))
	return nil
}

func (m *Manager) indexOf(id uuid.UUID) (int, error) {
	for i, p := range m.pages {
		if p.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", common.ErrPageNotFound, id)
}

func (m *Manager) checkIndex(i int) error {
	if i < 0 || i >= len(m.pages) {
		return fmt.Errorf("%w: %d (pages=%d)", common.ErrIndexOutOfRange, i, len(m.pages))
	}
	return nil
}

// Encode returns filename + base64 content for each page, in batch order.
func (m *Manager) Encode() []entity.EncodedPage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]entity.EncodedPage, len(m.pages))
	for i, p := range m.pages {
		out[i] = entity.EncodedPage{
			Filename: p.DisplayName,
			Content:  base64.StdEncoding.EncodeToString(p.Content),
		}
	}
	return out
}

// Pages returns a snapshot of the pages in order.
func (m *Manager) Pages() []entity.PendingPage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]entity.PendingPage, len(m.pages))
	copy(out, m.pages)
	return out
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pages)
}

// TotalBytes sums the raw size of every page.
func (m *Manager) TotalBytes() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, p := range m.pages {
		n += p.ByteSize
	}
	return n
}

// Clear drops every page.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.pages = nil
	m.mu.Unlock()
}
