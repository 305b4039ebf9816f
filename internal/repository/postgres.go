package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/binalert/internal/models"
)

const reportColumns = `
	id,
	image_url,
	timestamp_ms,
	latitude,
	longitude,
	status,
	urgency,
	waste_types,
	overflow_level,
	ai_analysis_text,
	reporter_id`

// PostgresStore хранит отчеты и пользователей в PostgreSQL
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// AddReport создает новую запись об отчете в бд
func (r *PostgresStore) AddReport(ctx context.Context, report *models.WasteReport) error {
	query := `
		INSERT INTO reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.db.Exec(ctx, query,
		report.ID,
		report.ImageURL,
		report.Timestamp,
		report.Location.Lat,
		report.Location.Lng,
		string(report.Status),
		string(report.Urgency),
		report.WasteType,
		report.OverflowLevel,
		report.AIAnalysisText,
		report.ReporterID,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// GetReport возвращает отчет по ID
func (r *PostgresStore) GetReport(ctx context.Context, id string) (*models.WasteReport, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1;`

	report, err := scanReport(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("report with id %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get report by id: %w", err)
	}
	return report, nil
}

// ListReports возвращает отчеты от новых к старым
func (r *PostgresStore) ListReports(ctx context.Context, limit int) ([]*models.WasteReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		ORDER BY timestamp_ms DESC, seq DESC
		LIMIT $1;
	`
	// NULL в LIMIT снимает ограничение
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}

	rows, err := r.db.Query(ctx, query, limitArg)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*models.WasteReport, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return reports, nil
}

// SaveUser создает или заменяет пользователя
func (r *PostgresStore) SaveUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, role, points, avatar)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			points = EXCLUDED.points,
			avatar = EXCLUDED.avatar;
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.Name, string(user.Role), user.Points, user.Avatar)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUser возвращает пользователя по ID
func (r *PostgresStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, name, role, points, avatar FROM users WHERE id = $1;`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// ListUsers возвращает всех пользователей
func (r *PostgresStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, role, points, avatar FROM users ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return users, nil
}

// AddPoints увеличивает баланс одним UPDATE
func (r *PostgresStore) AddPoints(ctx context.Context, id string, delta int) (*models.User, error) {
	query := `
		UPDATE users SET points = GREATEST(points + $1, 0)
		WHERE id = $2
		RETURNING id, name, role, points, avatar;
	`
	user, err := scanUser(r.db.QueryRow(ctx, query, delta, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to add points: %w", err)
	}
	return user, nil
}

func scanReport(row pgx.Row) (*models.WasteReport, error) {
	report := &models.WasteReport{}
	var status, urgency string
	err := row.Scan(
		&report.ID,
		&report.ImageURL,
		&report.Timestamp,
		&report.Location.Lat,
		&report.Location.Lng,
		&status,
		&urgency,
		&report.WasteType,
		&report.OverflowLevel,
		&report.AIAnalysisText,
		&report.ReporterID,
	)
	if err != nil {
		return nil, err
	}
	report.Status = models.ReportStatus(status)
	report.Urgency = models.Urgency(urgency)
	return report, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	var role string
	if err := row.Scan(&user.ID, &user.Name, &role, &user.Points, &user.Avatar); err != nil {
		return nil, err
	}
	user.Role = models.UserRole(role)
	return user, nil
}
