package database

import (
	"context"
	"fmt"

	"nateiva/internal/models"
)

// ReplaceAvailability swaps the tutor's full weekly template in one
// transaction, so readers never see a half-written week.
func (db *DB) ReplaceAvailability(ctx context.Context, tutorID string, slots []models.AvailabilitySlot) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM availability_slots WHERE tutor_id = ?`, tutorID); err != nil {
		return fmt.Errorf("failed to clear availability: %w", err)
	}

	insert := `INSERT INTO availability_slots (tutor_id, day, start_minute, end_minute) VALUES (?, ?, ?, ?)`
	for _, s := range slots {
		if _, err := tx.ExecContext(ctx, insert, tutorID, s.Day, s.Start, s.End); err != nil {
			return fmt.Errorf("failed to insert availability slot: %w", err)
		}
	}

	return tx.Commit()
}

func (db *DB) GetAvailability(ctx context.Context, tutorID string) ([]models.AvailabilitySlot, error) {
	query := `SELECT day, start_minute, end_minute FROM availability_slots
              WHERE tutor_id = ? ORDER BY day, start_minute`
	rows, err := db.QueryContext(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer rows.Close()

	var slots []models.AvailabilitySlot
	for rows.Next() {
		var s models.AvailabilitySlot
		if err := rows.Scan(&s.Day, &s.Start, &s.End); err != nil {
			return nil, fmt.Errorf("failed to scan availability slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (db *DB) AddBlockedDate(ctx context.Context, tutorID, date string) error {
	query := `INSERT OR IGNORE INTO blocked_dates (tutor_id, date) VALUES (?, ?)`
	if _, err := db.ExecContext(ctx, query, tutorID, date); err != nil {
		return fmt.Errorf("failed to add blocked date: %w", err)
	}
	return nil
}

func (db *DB) RemoveBlockedDate(ctx context.Context, tutorID, date string) error {
	query := `DELETE FROM blocked_dates WHERE tutor_id = ? AND date = ?`
	if _, err := db.ExecContext(ctx, query, tutorID, date); err != nil {
		return fmt.Errorf("failed to remove blocked date: %w", err)
	}
	return nil
}

func (db *DB) GetBlockedDates(ctx context.Context, tutorID string) ([]string, error) {
	query := `SELECT date FROM blocked_dates WHERE tutor_id = ? ORDER BY date`
	rows, err := db.QueryContext(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocked dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan blocked date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
