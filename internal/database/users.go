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

func (db *DB) CreateOrUpdateUser(ctx context.Context, user *models.User) error {
	subjects, err := encodeList(user.Subjects)
	if err != nil {
		return fmt.Errorf("failed to encode subjects: %w", err)
	}
	languages, err := encodeList(user.Languages)
	if err != nil {
		return fmt.Errorf("failed to encode languages: %w", err)
	}

	now := time.Now()
	query := `INSERT INTO users (id, name, role, bio, subjects, languages, price_per_hour, rating, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                name = excluded.name,
                role = excluded.role,
                bio = excluded.bio,
                subjects = excluded.subjects,
                languages = excluded.languages,
                price_per_hour = excluded.price_per_hour,
                rating = excluded.rating,
                updated_at = excluded.updated_at`
	_, err = db.ExecContext(ctx, query,
		user.ID, user.Name, user.Role, user.Bio, subjects, languages,
		user.PricePerHour, user.Rating, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, name, role, bio, subjects, languages, price_per_hour, rating, created_at, updated_at
              FROM users WHERE id = ?`
	u, err := scanUser(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("user %s", id)
	}
	return u, err
}

func (db *DB) ListUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT id, name, role, bio, subjects, languages, price_per_hour, rating, created_at, updated_at
              FROM users ORDER BY rowid`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var bio sql.NullString
	var subjects, languages sql.NullString
	err := row.Scan(
		&u.ID, &u.Name, &u.Role, &bio, &subjects, &languages,
		&u.PricePerHour, &u.Rating, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.Bio = bio.String
	if u.Subjects, err = decodeList(subjects); err != nil {
		return nil, fmt.Errorf("failed to decode subjects: %w", err)
	}
	if u.Languages, err = decodeList(languages); err != nil {
		return nil, fmt.Errorf("failed to decode languages: %w", err)
	}
	return u, nil
}
