package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"member-gateway/internal/member/models"
	id "member-gateway/pkg/domain"
	dErrors "member-gateway/pkg/domain-errors"
	"member-gateway/pkg/sentinel"
)

// Constraint names from migrations/0001_members.sql. The postgres store maps
// each one onto the error taxonomy so the workflow never sees raw pg errors.
const (
	constraintOrgEmail        = "members_org_email_key"
	constraintOrgNationalID   = "members_org_national_id_key"
	constraintOrgMemberNumber = "members_org_member_number_key"
	constraintOrgIdentity     = "members_org_identity_key"
	constraintIdentityFK      = "members_identity_id_fkey"
)

// PostgresStore persists membership records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed member store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const memberColumns = `
	id, org_id, region_id, identity_id, member_number, member_type, tier, status,
	first_name, last_name, email, phone, national_id, date_of_birth, address,
	created_at, updated_at
`

// RegisterMember performs the atomic, idempotent membership creation.
// If the identity already holds a membership in the organization, the existing
// record is returned with ActionExisting instead of an error, which makes
// retrying after an ambiguous network failure safe.
func (s *PostgresStore) RegisterMember(ctx context.Context, params RegisterParams) (*RegisterResult, error) {
	existing, err := s.FindByOrgAndIdentity(ctx, params.OrgID, params.IdentityID)
	if err == nil {
		return &RegisterResult{Record: existing, Action: models.ActionExisting}, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, s.registerError(ctx, params, err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO members (
			id, org_id, region_id, identity_id, member_number, member_type, tier, status,
			first_name, last_name, email, phone, national_id, date_of_birth, address,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + memberColumns

	var regionID any
	if params.RegionID != nil {
		regionID = uuid.UUID(*params.RegionID)
	}
	var nationalID any
	if params.NationalID != "" {
		nationalID = params.NationalID
	}

	row := s.db.QueryRowContext(ctx, query,
		uuid.New(),
		uuid.UUID(params.OrgID),
		regionID,
		uuid.UUID(params.IdentityID),
		params.MemberNumber,
		string(params.MemberType),
		string(params.Tier),
		string(params.Status),
		params.FirstName,
		params.LastName,
		params.Email,
		params.Phone,
		nationalID,
		params.DateOfBirth,
		params.Address,
		now,
		now,
	)

	rec, err := scanMember(row)
	if err != nil {
		// A concurrent submission for the same identity can win the insert
		// race after our pre-check missed it. That is still the idempotent
		// case: return the winner's record.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraintOrgIdentity {
			if existing, findErr := s.FindByOrgAndIdentity(ctx, params.OrgID, params.IdentityID); findErr == nil {
				return &RegisterResult{Record: existing, Action: models.ActionExisting}, nil
			}
		}
		return nil, s.registerError(ctx, params, err)
	}
	return &RegisterResult{Record: rec, Action: models.ActionCreated}, nil
}

// registerError translates constraint violations and infrastructure failures
// into the workflow's error taxonomy. Duplicate rejections carry the existing
// member number so the caller can show it.
func (s *PostgresStore) registerError(ctx context.Context, params RegisterParams, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" && pgErr.ConstraintName == constraintOrgEmail:
			hint := s.existingMemberNumber(ctx, params, byEmail)
			return dErrors.NewWithHint(dErrors.CodeDuplicateEmail,
				"a member with this email already exists", hint)
		case pgErr.Code == "23505" && pgErr.ConstraintName == constraintOrgNationalID:
			hint := s.existingMemberNumber(ctx, params, byNationalID)
			return dErrors.NewWithHint(dErrors.CodeDuplicateIdentity,
				"a member with this national ID already exists", hint)
		case pgErr.Code == "23505" && pgErr.ConstraintName == constraintOrgMemberNumber:
			return dErrors.Wrap(
				fmt.Errorf("member number %s: %w", params.MemberNumber, sentinel.ErrConflict),
				dErrors.CodeRPC, "member number collision")
		case pgErr.Code == "23503" && pgErr.ConstraintName == constraintIdentityFK:
			return dErrors.Wrap(
				fmt.Errorf("identity %s: %w", params.IdentityID, sentinel.ErrIdentityNotVisible),
				dErrors.CodeUserNotFound, "identity not yet visible to member store")
		}
	}
	return dErrors.Wrap(err, dErrors.CodeRPC, "register member")
}

type duplicateKind int

const (
	byEmail duplicateKind = iota
	byNationalID
)

// existingMemberNumber looks up the record that caused a duplicate rejection.
// Best effort: a failed lookup degrades the hint, not the error.
func (s *PostgresStore) existingMemberNumber(ctx context.Context, params RegisterParams, kind duplicateKind) string {
	var (
		rec *models.MembershipRecord
		err error
	)
	switch kind {
	case byEmail:
		rec, err = s.FindByOrgAndEmail(ctx, params.OrgID, params.Email)
	case byNationalID:
		rec, err = s.FindByOrgAndNationalID(ctx, params.OrgID, params.NationalID)
	}
	if err != nil {
		return ""
	}
	return rec.MemberNumber
}

func (s *PostgresStore) FindByOrgAndEmail(ctx context.Context, orgID id.OrgID, email string) (*models.MembershipRecord, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE org_id = $1 AND lower(email) = lower($2)`
	rec, err := scanMember(s.db.QueryRowContext(ctx, query, uuid.UUID(orgID), email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("member not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find member by email: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) FindByOrgAndNationalID(ctx context.Context, orgID id.OrgID, nationalID string) (*models.MembershipRecord, error) {
	if nationalID == "" {
		return nil, fmt.Errorf("member not found: %w", sentinel.ErrNotFound)
	}
	query := `SELECT ` + memberColumns + ` FROM members WHERE org_id = $1 AND national_id = $2`
	rec, err := scanMember(s.db.QueryRowContext(ctx, query, uuid.UUID(orgID), nationalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("member not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find member by national id: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) FindByOrgAndIdentity(ctx context.Context, orgID id.OrgID, identityID id.IdentityID) (*models.MembershipRecord, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE org_id = $1 AND identity_id = $2`
	rec, err := scanMember(s.db.QueryRowContext(ctx, query, uuid.UUID(orgID), uuid.UUID(identityID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("member not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find member by identity: %w", err)
	}
	return rec, nil
}

func scanMember(row *sql.Row) (*models.MembershipRecord, error) {
	var (
		rec        models.MembershipRecord
		memberID   uuid.UUID
		orgID      uuid.UUID
		regionID   *uuid.UUID
		identityID uuid.UUID
		memberType string
		tier       string
		status     string
		phone      sql.NullString
		nationalID sql.NullString
		address    sql.NullString
	)
	err := row.Scan(
		&memberID, &orgID, &regionID, &identityID, &rec.MemberNumber,
		&memberType, &tier, &status,
		&rec.FirstName, &rec.LastName, &rec.Email, &phone, &nationalID,
		&rec.DateOfBirth, &address,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.ID = id.MemberID(memberID)
	rec.OrgID = id.OrgID(orgID)
	if regionID != nil {
		r := id.RegionID(*regionID)
		rec.RegionID = &r
	}
	rec.IdentityID = id.IdentityID(identityID)
	rec.MemberType = models.MemberType(memberType)
	rec.Tier = models.Tier(tier)
	rec.Status = models.MemberStatus(status)
	rec.Phone = phone.String
	rec.NationalID = nationalID.String
	rec.Address = address.String
	return &rec, nil
}
