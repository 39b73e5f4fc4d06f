package testing

import (
	"context"
	"strings"
	"sync"

	"github.com/desertthunder/wavelet/internal/models"
)

// MockCatalog serves tracks grouped by status and records every call as "list:<statuses>" or "get:<ids>".
// It satisfies the catalog interfaces of the services, tasks and player packages.
type MockCatalog struct {
	mu       sync.Mutex
	ByStatus map[string][]models.Track
	Err      error
	Calls    []string
}

func NewMockCatalog(tracks ...models.Track) *MockCatalog {
	m := &MockCatalog{ByStatus: map[string][]models.Track{}}
	for _, t := range tracks {
		m.ByStatus[t.Status] = append(m.ByStatus[t.Status], t)
	}
	return m
}

// ListTracks returns tracks for statuses in argument order, or every track when none are given.
func (m *MockCatalog) ListTracks(ctx context.Context, statuses ...string) ([]models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "list:"+strings.Join(statuses, ","))
	if m.Err != nil {
		return nil, m.Err
	}

	if len(statuses) == 0 {
		var all []models.Track
		for _, ts := range m.ByStatus {
			all = append(all, ts...)
		}
		return all, nil
	}
	var out []models.Track
	for _, s := range statuses {
		out = append(out, m.ByStatus[s]...)
	}
	return out, nil
}

// GetTracks resolves ids across every status, keeping the order of ids and skipping unknown ones.
func (m *MockCatalog) GetTracks(ctx context.Context, ids []string) ([]models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "get:"+strings.Join(ids, ","))
	if m.Err != nil {
		return nil, m.Err
	}

	out := make([]models.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := m.find(id); ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// LastCall returns the most recent recorded call, "" when there were none.
func (m *MockCatalog) LastCall() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return ""
	}
	return m.Calls[len(m.Calls)-1]
}

func (m *MockCatalog) find(id string) (models.Track, bool) {
	for _, ts := range m.ByStatus {
		for _, t := range ts {
			if t.ID == id {
				return t, true
			}
		}
	}
	return models.Track{}, false
}
