package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/soradaze/qmatch/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db}

	// Initialize database schema
	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStorage) ListResponderProfiles(ctx context.Context) ([]*models.ResponderProfile, error) {
	query := `
		SELECT p.user_id, u.role, p.expertise_tags, p.level_preference,
		       p.answer_count, p.thanks_count, p.avg_response_time,
		       p.telegram_chat_id, p.updated_at
		FROM responder_profiles p
		JOIN users u ON u.id = p.user_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying responder profiles: %v", err)
	}
	defer rows.Close()

	var profiles []*models.ResponderProfile
	for rows.Next() {
		profile := &models.ResponderProfile{}
		var levelPref sql.NullString
		var avgResponse, chatID sql.NullInt64
		err := rows.Scan(
			&profile.UserID,
			&profile.Role,
			pq.Array(&profile.ExpertiseTags),
			&levelPref,
			&profile.AnswerCount,
			&profile.ThanksCount,
			&avgResponse,
			&chatID,
			&profile.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning responder profile: %v", err)
		}
		if levelPref.Valid {
			level := models.Level(levelPref.String)
			profile.LevelPreference = &level
		}
		if avgResponse.Valid {
			minutes := int(avgResponse.Int64)
			profile.AvgResponseTime = &minutes
		}
		if chatID.Valid {
			id := chatID.Int64
			profile.TelegramChatID = &id
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating responder profiles: %v", err)
	}

	return profiles, nil
}

func (s *PostgresStorage) UpdateResponderStats(ctx context.Context, userID string, stats models.ResponderStats) error {
	query := `
		UPDATE responder_profiles
		SET answer_count = $1, thanks_count = $2, avg_response_time = $3, updated_at = now()
		WHERE user_id = $4`

	var avgResponse sql.NullInt64
	if stats.AvgResponseTime != nil {
		avgResponse = sql.NullInt64{Int64: int64(*stats.AvgResponseTime), Valid: true}
	}

	// No rows affected means no profile exists for this user, which is
	// a no-op by contract.
	_, err := s.db.ExecContext(ctx, query, stats.AnswerCount, stats.ThanksCount, avgResponse, userID)
	if err != nil {
		return fmt.Errorf("error updating responder stats: %v", err)
	}

	return nil
}

func (s *PostgresStorage) CreateAssignment(ctx context.Context, assignment *models.ThreadAssignment) error {
	query := `
		INSERT INTO thread_assignments (id, thread_id, responder_id, status, notified_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.ExecContext(ctx, query,
		assignment.ID,
		assignment.ThreadID,
		assignment.ResponderID,
		assignment.Status,
		assignment.NotifiedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateAssignment
		}
		return fmt.Errorf("error creating assignment: %v", err)
	}

	return nil
}

func (s *PostgresStorage) CreateNotification(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, thread_id, type, title, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		notification.ID,
		notification.UserID,
		notification.ThreadID,
		notification.Type,
		notification.Title,
		notification.Body,
		notification.Read,
		notification.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating notification: %v", err)
	}

	return nil
}

func (s *PostgresStorage) CountOriginalAnswers(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM messages
		WHERE sender_id = $1 AND type = 'answer' AND is_original = TRUE`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting answers: %v", err)
	}

	return count, nil
}

func (s *PostgresStorage) CountThanksReceived(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM feedback
		WHERE to_user_id = $1 AND kind = 'thanks'`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting thanks: %v", err)
	}

	return count, nil
}

func (s *PostgresStorage) ListAnsweredAssignments(ctx context.Context, responderID string) ([]*models.ThreadAssignment, error) {
	query := `
		SELECT id, thread_id, responder_id, status, notified_at, answered_at
		FROM thread_assignments
		WHERE responder_id = $1 AND status = 'answered' AND answered_at IS NOT NULL`

	rows, err := s.db.QueryContext(ctx, query, responderID)
	if err != nil {
		return nil, fmt.Errorf("error querying answered assignments: %v", err)
	}
	defer rows.Close()

	var assignments []*models.ThreadAssignment
	for rows.Next() {
		assignment := &models.ThreadAssignment{}
		var answeredAt sql.NullTime
		err := rows.Scan(
			&assignment.ID,
			&assignment.ThreadID,
			&assignment.ResponderID,
			&assignment.Status,
			&assignment.NotifiedAt,
			&answeredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning assignment: %v", err)
		}
		if answeredAt.Valid {
			t := answeredAt.Time
			assignment.AnsweredAt = &t
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %v", err)
	}

	return assignments, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
