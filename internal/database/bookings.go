package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nateiva/internal/domain"
	"nateiva/internal/models"
)

const bookingColumns = `id, learner_id, tutor_id, subject, start_time, end_time,
                        status, price, review_given, created_at, updated_at`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (
				id, learner_id, tutor_id, subject, start_time, end_time,
				status, price, review_given, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	_, err := db.ExecContext(ctx, query,
		booking.ID,
		booking.LearnerID,
		booking.TutorID,
		booking.Subject,
		booking.StartTime,
		booking.EndTime,
		booking.Status,
		booking.Price,
		booking.ReviewGiven,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := db.scanBookingRow(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("booking %s", id)
	}
	return b, err
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id string, status string) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`
	res, err := db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return db.requireRow(res, id)
}

func (db *DB) UpdateBookingInterval(ctx context.Context, id string, start, end time.Time) error {
	query := `UPDATE bookings SET start_time = ?, end_time = ?, updated_at = ? WHERE id = ?`
	res, err := db.ExecContext(ctx, query, start, end, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking interval: %w", err)
	}
	return db.requireRow(res, id)
}

func (db *DB) SetBookingReviewGiven(ctx context.Context, id string) error {
	query := `UPDATE bookings SET review_given = 1, updated_at = ? WHERE id = ?`
	res, err := db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set review flag: %w", err)
	}
	return db.requireRow(res, id)
}

func (db *DB) ListBookingsByLearner(ctx context.Context, learnerID string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE learner_id = ? ORDER BY rowid`
	return db.queryBookings(ctx, query, learnerID)
}

func (db *DB) ListBookingsByTutor(ctx context.Context, tutorID string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE tutor_id = ? ORDER BY rowid`
	return db.queryBookings(ctx, query, tutorID)
}

// ListActiveBookings returns pending/confirmed bookings where the party is
// either side, in insertion (registry) order.
func (db *DB) ListActiveBookings(ctx context.Context, partyID string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE (learner_id = ? OR tutor_id = ?) AND status IN (?, ?)
              ORDER BY rowid`
	return db.queryBookings(ctx, query, partyID, partyID, models.StatusPending, models.StatusConfirmed)
}

func (db *DB) GetDailyBookings(ctx context.Context, start, end time.Time) (map[string][]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE start_time >= ? AND start_time < ?
              ORDER BY start_time, rowid`
	bookings, err := db.queryBookings(ctx, query, start, end)
	if err != nil {
		return nil, err
	}

	daily := make(map[string][]*models.Booking)
	for _, b := range bookings {
		key := b.StartTime.Format(models.DateLayout)
		daily[key] = append(daily[key], b)
	}
	return daily, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		err := rows.Scan(
			&b.ID, &b.LearnerID, &b.TutorID, &b.Subject, &b.StartTime, &b.EndTime,
			&b.Status, &b.Price, &b.ReviewGiven, &b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (db *DB) scanBookingRow(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID, &b.LearnerID, &b.TutorID, &b.Subject, &b.StartTime, &b.EndTime,
		&b.Status, &b.Price, &b.ReviewGiven, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (db *DB) requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundf("booking %s", id)
	}
	return nil
}
