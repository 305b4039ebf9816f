package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/shenikar/binalert/internal/models"
)

// MemoryStore хранит отчеты и пользователей в памяти процесса.
// Отчеты лежат от новых к старым.
type MemoryStore struct {
	mu      sync.RWMutex
	reports []*models.WasteReport
	users   map[string]*models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*models.User),
	}
}

// AddReport добавляет отчет в начало коллекции
func (s *MemoryStore) AddReport(_ context.Context, report *models.WasteReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.reports {
		if r.ID == report.ID {
			return fmt.Errorf("report with id %s already exists", report.ID)
		}
	}
	s.reports = append([]*models.WasteReport{cloneReport(report)}, s.reports...)
	return nil
}

// GetReport возвращает отчет по ID
func (s *MemoryStore) GetReport(_ context.Context, id string) (*models.WasteReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.reports {
		if r.ID == id {
			return cloneReport(r), nil
		}
	}
	return nil, fmt.Errorf("report with id %s: %w", id, models.ErrNotFound)
}

// ListReports возвращает до limit последних отчетов
func (s *MemoryStore) ListReports(_ context.Context, limit int) ([]*models.WasteReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.reports)
	if limit > 0 && limit < n {
		n = limit
	}
	reports := make([]*models.WasteReport, n)
	for i := 0; i < n; i++ {
		reports[i] = cloneReport(s.reports[i])
	}
	return reports, nil
}

// SaveUser создает или заменяет пользователя
func (s *MemoryStore) SaveUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := *user
	s.users[user.ID] = &u
	return nil
}

// GetUser возвращает пользователя по ID
func (s *MemoryStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user with id %s: %w", id, models.ErrNotFound)
	}
	user := *u
	return &user, nil
}

// ListUsers возвращает всех пользователей
func (s *MemoryStore) ListUsers(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		user := *u
		users = append(users, &user)
	}
	return users, nil
}

// AddPoints атомарно увеличивает баланс пользователя
func (s *MemoryStore) AddPoints(_ context.Context, id string, delta int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user with id %s: %w", id, models.ErrNotFound)
	}
	u.Points = max(u.Points+delta, 0)
	user := *u
	return &user, nil
}

func cloneReport(r *models.WasteReport) *models.WasteReport {
	c := *r
	c.WasteType = append([]string(nil), r.WasteType...)
	return &c
}
