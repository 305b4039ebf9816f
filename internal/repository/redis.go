package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/binalert/internal/models"
)

const (
	reportListKey = "reports"
	userSetKey    = "users"
	// maxTxRetries - число повторов оптимистичной транзакции при конфликте
	maxTxRetries = 10
)

func reportKey(id string) string { return fmt.Sprintf("report:%s", id) }
func userKey(id string) string   { return fmt.Sprintf("user:%s", id) }

// RedisStore хранит отчеты в списке Redis (LPUSH держит новые в голове)
// и пользователей в отдельных ключах.
type RedisStore struct {
	redisClient *redis.Client
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{redisClient: redisClient}
}

// AddReport сохраняет отчет и добавляет его ID в начало списка
func (r *RedisStore) AddReport(ctx context.Context, report *models.WasteReport) error {
	val, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	key := reportKey(report.ID)

	// Ключ и запись в списке появляются одной транзакцией
	txf := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to check report: %w", err)
		}
		if exists > 0 {
			return fmt.Errorf("report with id %s already exists", report.ID)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, val, 0)
			pipe.LPush(ctx, reportListKey, report.ID)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.redisClient.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("failed to save report %s: too many concurrent updates", report.ID)
}

// GetReport возвращает отчет по ID
func (r *RedisStore) GetReport(ctx context.Context, id string) (*models.WasteReport, error) {
	val, err := r.redisClient.Get(ctx, reportKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("report with id %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	report := &models.WasteReport{}
	if err := json.Unmarshal(val, report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return report, nil
}

// ListReports возвращает до limit последних отчетов
func (r *RedisStore) ListReports(ctx context.Context, limit int) ([]*models.WasteReport, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	ids, err := r.redisClient.LRange(ctx, reportListKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list report ids: %w", err)
	}
	if len(ids) == 0 {
		return []*models.WasteReport{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = reportKey(id)
	}
	vals, err := r.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}

	reports := make([]*models.WasteReport, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue // ключ удален вручную
		}
		report := &models.WasteReport{}
		if err := json.Unmarshal([]byte(s), report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// SaveUser создает или заменяет пользователя
func (r *RedisStore) SaveUser(ctx context.Context, user *models.User) error {
	val, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	_, err = r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, userKey(user.ID), val, 0)
		pipe.SAdd(ctx, userSetKey, user.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUser возвращает пользователя по ID
func (r *RedisStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	val, err := r.redisClient.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("user with id %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user := &models.User{}
	if err := json.Unmarshal(val, user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return user, nil
}

// ListUsers возвращает всех пользователей
func (r *RedisStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	ids, err := r.redisClient.SMembers(ctx, userSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}

	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		user, err := r.GetUser(ctx, id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				continue
			}
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// AddPoints увеличивает баланс в транзакции WATCH/MULTI
func (r *RedisStore) AddPoints(ctx context.Context, id string, delta int) (*models.User, error) {
	key := userKey(id)
	var updated *models.User

	txf := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return fmt.Errorf("user with id %s: %w", id, models.ErrNotFound)
			}
			return fmt.Errorf("failed to get user: %w", err)
		}

		user := &models.User{}
		if err := json.Unmarshal(val, user); err != nil {
			return fmt.Errorf("failed to unmarshal user: %w", err)
		}
		user.Points = max(user.Points+delta, 0)

		newVal, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newVal, 0)
			return nil
		})
		if err == nil {
			updated = user
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.redisClient.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("failed to add points to user %s: too many concurrent updates", id)
}
