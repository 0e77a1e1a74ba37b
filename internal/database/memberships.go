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

// CreateOrganizationWithOwner inserts the organization and its owner
// membership in one transaction. Either both rows land or neither does.
func (db *DB) CreateOrganizationWithOwner(ctx context.Context, org *models.Organization, owner *models.Membership) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	languages, err := encodeList(org.Languages)
	if err != nil {
		return fmt.Errorf("failed to encode languages: %w", err)
	}
	tutorIDs, err := encodeList(org.TutorIDs)
	if err != nil {
		return fmt.Errorf("failed to encode tutor ids: %w", err)
	}
	learnerIDs, err := encodeList(org.LearnerIDs)
	if err != nil {
		return fmt.Errorf("failed to encode learner ids: %w", err)
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO organizations (id, name, description, country, languages, owner_id, tutor_ids, learner_ids, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		org.ID, org.Name, org.Description, org.Country, languages, org.OwnerID, tutorIDs, learnerIDs, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO memberships (user_id, organization_id, role) VALUES (?, ?, ?)`,
		owner.UserID, owner.OrganizationID, owner.Role,
	)
	if err != nil {
		return fmt.Errorf("failed to create owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit organization: %w", err)
	}
	org.CreatedAt = now
	return nil
}

func (db *DB) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	query := `SELECT id, name, description, country, languages, owner_id, tutor_ids, learner_ids, created_at
              FROM organizations WHERE id = ?`
	org, err := scanOrganization(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("organization %s", id)
	}
	return org, err
}

func (db *DB) ListOrganizations(ctx context.Context) ([]*models.Organization, error) {
	query := `SELECT id, name, description, country, languages, owner_id, tutor_ids, learner_ids, created_at
              FROM organizations ORDER BY rowid`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

func (db *DB) GetMembership(ctx context.Context, userID, organizationID string) (*models.Membership, error) {
	query := `SELECT user_id, organization_id, role FROM memberships
              WHERE user_id = ? AND organization_id = ?`
	m := &models.Membership{}
	err := db.QueryRowContext(ctx, query, userID, organizationID).Scan(&m.UserID, &m.OrganizationID, &m.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("membership of %s in %s", userID, organizationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

func (db *DB) ListMembershipsByUser(ctx context.Context, userID string) ([]*models.Membership, error) {
	query := `SELECT user_id, organization_id, role FROM memberships WHERE user_id = ? ORDER BY rowid`
	return db.queryMemberships(ctx, query, userID)
}

func (db *DB) ListMemberships(ctx context.Context) ([]*models.Membership, error) {
	query := `SELECT user_id, organization_id, role FROM memberships ORDER BY rowid`
	return db.queryMemberships(ctx, query)
}

func (db *DB) CreateMembershipRequest(ctx context.Context, req *models.MembershipRequest) error {
	now := time.Now()
	_, err := db.ExecContext(ctx,
		`INSERT INTO membership_requests (id, user_id, organization_id, role, status, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		req.ID, req.UserID, req.OrganizationID, req.Role, req.Status, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create membership request: %w", err)
	}
	req.CreatedAt = now
	return nil
}

func (db *DB) GetMembershipRequest(ctx context.Context, id string) (*models.MembershipRequest, error) {
	query := `SELECT id, user_id, organization_id, role, status, created_at
              FROM membership_requests WHERE id = ?`
	req, err := scanRequest(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("membership request %s", id)
	}
	return req, err
}

func (db *DB) GetPendingRequest(ctx context.Context, userID, organizationID string) (*models.MembershipRequest, error) {
	query := `SELECT id, user_id, organization_id, role, status, created_at
              FROM membership_requests
              WHERE user_id = ? AND organization_id = ? AND status = ?`
	req, err := scanRequest(db.QueryRowContext(ctx, query, userID, organizationID, models.RequestPending))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("pending request of %s for %s", userID, organizationID)
	}
	return req, err
}

func (db *DB) ListPendingRequests(ctx context.Context, organizationID string) ([]*models.MembershipRequest, error) {
	query := `SELECT id, user_id, organization_id, role, status, created_at
              FROM membership_requests
              WHERE organization_id = ? AND status = ? ORDER BY rowid`
	return db.queryRequests(ctx, query, organizationID, models.RequestPending)
}

func (db *DB) ListMembershipRequests(ctx context.Context) ([]*models.MembershipRequest, error) {
	query := `SELECT id, user_id, organization_id, role, status, created_at
              FROM membership_requests ORDER BY rowid`
	return db.queryRequests(ctx, query)
}

// PromoteRequest turns a pending request into a membership atomically:
// the membership row is inserted, the organization roster is extended and
// the request row is deleted in one transaction.
func (db *DB) PromoteRequest(ctx context.Context, requestID string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	req, err := scanRequest(tx.QueryRowContext(ctx,
		`SELECT id, user_id, organization_id, role, status, created_at
         FROM membership_requests WHERE id = ?`, requestID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundf("membership request %s", requestID)
	}
	if err != nil {
		return err
	}
	if req.Status != models.RequestPending {
		return domain.Transitionf(req.Status, models.RequestApproved)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO memberships (user_id, organization_id, role) VALUES (?, ?, ?)`,
		req.UserID, req.OrganizationID, req.Role,
	)
	if err != nil {
		return fmt.Errorf("failed to insert membership: %w", err)
	}

	if err := addToRoster(ctx, tx, req); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM membership_requests WHERE id = ?`, requestID); err != nil {
		return fmt.Errorf("failed to delete membership request: %w", err)
	}

	return tx.Commit()
}

func (db *DB) RejectRequest(ctx context.Context, requestID string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE membership_requests SET status = ? WHERE id = ? AND status = ?`,
		models.RequestRejected, requestID, models.RequestPending,
	)
	if err != nil {
		return fmt.Errorf("failed to reject membership request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundf("pending membership request %s", requestID)
	}
	return nil
}

// addToRoster appends the joining user to the organization's tutor or
// learner id list, depending on the requested role.
func addToRoster(ctx context.Context, tx *sql.Tx, req *models.MembershipRequest) error {
	org, err := scanOrganization(tx.QueryRowContext(ctx,
		`SELECT id, name, description, country, languages, owner_id, tutor_ids, learner_ids, created_at
         FROM organizations WHERE id = ?`, req.OrganizationID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundf("organization %s", req.OrganizationID)
	}
	if err != nil {
		return err
	}

	switch req.Role {
	case models.MemberTutor:
		org.TutorIDs = append(org.TutorIDs, req.UserID)
	default:
		org.LearnerIDs = append(org.LearnerIDs, req.UserID)
	}

	tutorIDs, err := encodeList(org.TutorIDs)
	if err != nil {
		return fmt.Errorf("failed to encode tutor ids: %w", err)
	}
	learnerIDs, err := encodeList(org.LearnerIDs)
	if err != nil {
		return fmt.Errorf("failed to encode learner ids: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE organizations SET tutor_ids = ?, learner_ids = ? WHERE id = ?`,
		tutorIDs, learnerIDs, org.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update organization roster: %w", err)
	}
	return nil
}

func (db *DB) queryMemberships(ctx context.Context, query string, args ...interface{}) ([]*models.Membership, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	var memberships []*models.Membership
	for rows.Next() {
		m := &models.Membership{}
		if err := rows.Scan(&m.UserID, &m.OrganizationID, &m.Role); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...interface{}) ([]*models.MembershipRequest, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query membership requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.MembershipRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func scanOrganization(row rowScanner) (*models.Organization, error) {
	org := &models.Organization{}
	var description, country sql.NullString
	var languages, tutorIDs, learnerIDs sql.NullString
	err := row.Scan(
		&org.ID, &org.Name, &description, &country, &languages,
		&org.OwnerID, &tutorIDs, &learnerIDs, &org.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan organization: %w", err)
	}
	org.Description = description.String
	org.Country = country.String
	if org.Languages, err = decodeList(languages); err != nil {
		return nil, fmt.Errorf("failed to decode languages: %w", err)
	}
	if org.TutorIDs, err = decodeList(tutorIDs); err != nil {
		return nil, fmt.Errorf("failed to decode tutor ids: %w", err)
	}
	if org.LearnerIDs, err = decodeList(learnerIDs); err != nil {
		return nil, fmt.Errorf("failed to decode learner ids: %w", err)
	}
	return org, nil
}

func scanRequest(row rowScanner) (*models.MembershipRequest, error) {
	req := &models.MembershipRequest{}
	err := row.Scan(&req.ID, &req.UserID, &req.OrganizationID, &req.Role, &req.Status, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan membership request: %w", err)
	}
	return req, nil
}
