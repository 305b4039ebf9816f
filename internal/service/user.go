package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shenikar/binalert/internal/models"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=user.go -destination=mocks/user.go -package=mocks

// UserRepository определяет контракт хранилища пользователей
type UserRepository interface {
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	AddPoints(ctx context.Context, id string, delta int) (*models.User, error)
}

// UserService определяет контракт работы с пользователями
type UserService interface {
	StartSession(ctx context.Context, role models.UserRole) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// LeaderboardEntry - строка таблицы лидеров
type LeaderboardEntry struct {
	Rank   int          `json:"rank"`
	User   *models.User `json:"user"`
	Points int          `json:"points"`
}

// DemoCitizen - персона гражданина для демонстрационного входа
func DemoCitizen() *models.User {
	return &models.User{
		ID:     "user-123",
		Name:   "Alex Rivera",
		Role:   models.RoleCitizen,
		Points: 1250,
		Avatar: "https://picsum.photos/200",
	}
}

// DemoEmployer - персона муниципалитета для демонстрационного входа
func DemoEmployer() *models.User {
	return &models.User{
		ID:     "admin-001",
		Name:   "City Ops",
		Role:   models.RoleEmployer,
		Points: 0,
		Avatar: "https://picsum.photos/201",
	}
}

type userService struct {
	users  UserRepository
	logger *logrus.Logger
}

func NewUserService(users UserRepository, logger *logrus.Logger) UserService {
	return &userService{
		users:  users,
		logger: logger,
	}
}

// StartSession выбирает демонстрационную персону по роли.
// Аутентификации нет: EMPLOYER получает муниципалитет, остальные - гражданина.
func (s *userService) StartSession(ctx context.Context, role models.UserRole) (*models.User, error) {
	persona := DemoCitizen()
	if role == models.RoleEmployer {
		persona = DemoEmployer()
	}

	log := s.logger.WithFields(logrus.Fields{
		"service": "user",
		"method":  "StartSession",
		"user_id": persona.ID,
	})

	user, err := s.users.GetUser(ctx, persona.ID)
	if err == nil {
		log.Info("Session started")
		return user, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		log.WithError(err).Error("Failed to get user from repository")
		return nil, fmt.Errorf("service: could not start session: %w", err)
	}

	if err := s.users.SaveUser(ctx, persona); err != nil {
		log.WithError(err).Error("Failed to save persona in repository")
		return nil, fmt.Errorf("service: could not start session: %w", err)
	}
	log.Info("Session started with a new persona")
	return persona, nil
}

// GetUser получает пользователя по ID
func (s *userService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get user: %w", err)
	}
	return user, nil
}

// Leaderboard возвращает граждан, отсортированных по баллам
func (s *userService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("method", "Leaderboard").Error("Failed to list users from repository")
		return nil, fmt.Errorf("service: could not build leaderboard: %w", err)
	}

	citizens := make([]*models.User, 0, len(users))
	for _, u := range users {
		if u.Role == models.RoleCitizen {
			citizens = append(citizens, u)
		}
	}
	sort.SliceStable(citizens, func(i, j int) bool {
		if citizens[i].Points != citizens[j].Points {
			return citizens[i].Points > citizens[j].Points
		}
		return citizens[i].Name < citizens[j].Name
	})

	if limit > 0 && len(citizens) > limit {
		citizens = citizens[:limit]
	}

	entries := make([]LeaderboardEntry, len(citizens))
	for i, u := range citizens {
		entries[i] = LeaderboardEntry{Rank: i + 1, User: u, Points: u.Points}
	}
	return entries, nil
}
