package repositories

import (
	"database/sql"

	"github.com/google/uuid"

	"deskcore/internal/platform/models"
)

type DeliveryRepository struct {
	db *sql.DB
}

func NewDeliveryRepository(db *sql.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

func (r *DeliveryRepository) Record(attempt *models.DeliveryAttempt) error {
	if attempt.ID == "" {
		attempt.ID = "del_" + uuid.New().String()
	}

	query := `
		INSERT INTO delivery_attempts (id, endpoint_id, event_id, event_type, attempt_number, requested_at, success, status_code, response_body, error_message, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, attempt.ID, attempt.EndpointID, attempt.EventID, attempt.EventType,
		attempt.AttemptNumber, attempt.RequestedAt, attempt.Success, attempt.StatusCode,
		attempt.ResponseBody, attempt.ErrorMessage, attempt.DurationMs)
	return err
}

func (r *DeliveryRepository) ListByEndpoint(endpointID string, limit int) ([]*models.DeliveryAttempt, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, endpoint_id, event_id, event_type, attempt_number, requested_at, success, status_code, response_body, error_message, duration_ms
		FROM delivery_attempts
		WHERE endpoint_id = ?
		ORDER BY requested_at DESC, attempt_number DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, endpointID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*models.DeliveryAttempt
	for rows.Next() {
		var a models.DeliveryAttempt
		var statusCode sql.NullInt64
		var responseBody, errorMessage sql.NullString

		if err := rows.Scan(&a.ID, &a.EndpointID, &a.EventID, &a.EventType, &a.AttemptNumber,
			&a.RequestedAt, &a.Success, &statusCode, &responseBody, &errorMessage, &a.DurationMs); err != nil {
			return nil, err
		}

		if statusCode.Valid {
			a.StatusCode = int(statusCode.Int64)
		}
		if responseBody.Valid {
			a.ResponseBody = responseBody.String
		}
		if errorMessage.Valid {
			a.ErrorMessage = errorMessage.String
		}
		attempts = append(attempts, &a)
	}
	return attempts, nil
}

// PurgeBefore drops attempt rows older than the cutoff.
func (r *DeliveryRepository) PurgeBefore(cutoff int64) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM delivery_attempts WHERE requested_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
