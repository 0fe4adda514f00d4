package analytics

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"deskcore/internal/platform/models"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(log *models.RequestLog) error {
	if log.ID == "" {
		log.ID = "req_" + uuid.New().String()
	}
	if log.CreatedAt == 0 {
		log.CreatedAt = time.Now().Unix()
	}

	query := `
		INSERT INTO request_logs (id, firm_id, api_key_id, method, path, status_code, response_time_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, log.ID, log.FirmID, log.APIKeyID, log.Method, log.Path, log.StatusCode, log.ResponseTimeMs, log.CreatedAt)
	return err
}

func (r *Repository) ListSince(firmID string, since int64) ([]*models.RequestLog, error) {
	query := `
		SELECT id, firm_id, api_key_id, method, path, status_code, response_time_ms, created_at
		FROM request_logs
		WHERE firm_id = ? AND created_at >= ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, firmID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.RequestLog
	for rows.Next() {
		var l models.RequestLog
		var apiKeyID sql.NullString
		if err := rows.Scan(&l.ID, &l.FirmID, &apiKeyID, &l.Method, &l.Path, &l.StatusCode, &l.ResponseTimeMs, &l.CreatedAt); err != nil {
			return nil, err
		}
		if apiKeyID.Valid {
			l.APIKeyID = apiKeyID.String
		}
		logs = append(logs, &l)
	}
	return logs, nil
}

// RollupDaily folds one UTC day of request logs into usage_daily. Run
// by the worker after the day closes; re-running a day overwrites it.
func (r *Repository) RollupDaily(day time.Time) error {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC).Unix()
	end := start + 86400
	date := time.Unix(start, 0).UTC().Format("2006-01-02")

	query := `
		INSERT INTO usage_daily (firm_id, date, total_requests, failed_requests, avg_response_time_ms)
		SELECT firm_id, ?, COUNT(*),
			SUM(CASE WHEN status_code >= 400 THEN 1 ELSE 0 END),
			AVG(response_time_ms)
		FROM request_logs
		WHERE created_at >= ? AND created_at < ?
		GROUP BY firm_id
		ON CONFLICT(firm_id, date) DO UPDATE SET
			total_requests = excluded.total_requests,
			failed_requests = excluded.failed_requests,
			avg_response_time_ms = excluded.avg_response_time_ms
	`
	_, err := r.db.Exec(query, date, start, end)
	return err
}

// PurgeBefore drops raw request logs older than the cutoff. The daily
// rollups keep the history.
func (r *Repository) PurgeBefore(cutoff int64) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM request_logs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
