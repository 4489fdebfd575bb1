package provisioning

import (
	"context"
	"errors"
	"log/slog"

	"member-gateway/internal/member/store"
	id "member-gateway/pkg/domain"
	dErrors "member-gateway/pkg/domain-errors"
	"member-gateway/pkg/sentinel"
)

// RecentCache is a short-TTL cache of recently registered emails, keyed per
// organization, holding the member number. It closes the window where a
// just-created record is queried again before the caller's form state catches
// up. Advisory only, like the guard itself.
type RecentCache interface {
	Get(ctx context.Context, orgID id.OrgID, email string) (memberNumber string, ok bool)
	Set(ctx context.Context, orgID id.OrgID, email, memberNumber string)
}

// Guard checks a candidate registration against existing membership records
// before any mutation occurs. The check is advisory, not authoritative: a race
// can still slip through, and the store's unique constraints remain the source
// of truth. The guard exists to produce a clean duplicate error before any
// identity is created.
type Guard struct {
	store  store.Store
	cache  RecentCache
	logger *slog.Logger
}

func NewGuard(memberStore store.Store, cache RecentCache, logger *slog.Logger) *Guard {
	return &Guard{store: memberStore, cache: cache, logger: logger}
}

// Check fails with duplicate_email or duplicate_identity, carrying the
// existing member number, when a record already matches. Infrastructure
// failures are swallowed: the guard degrades to a no-op and leaves duplicate
// enforcement to the store's constraints.
func (g *Guard) Check(ctx context.Context, orgID id.OrgID, email, nationalID string) error {
	if g.cache != nil {
		if memberNumber, ok := g.cache.Get(ctx, orgID, email); ok {
			return dErrors.NewWithHint(dErrors.CodeDuplicateEmail,
				"a member with this email already exists", memberNumber)
		}
	}

	existing, err := g.store.FindByOrgAndEmail(ctx, orgID, email)
	if err == nil {
		return dErrors.NewWithHint(dErrors.CodeDuplicateEmail,
			"a member with this email already exists", existing.MemberNumber)
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		g.logger.WarnContext(ctx, "duplicate guard email lookup failed, deferring to store constraints",
			"org_id", orgID.String(),
			"error", err,
		)
	}

	if nationalID == "" {
		return nil
	}

	existing, err = g.store.FindByOrgAndNationalID(ctx, orgID, nationalID)
	if err == nil {
		return dErrors.NewWithHint(dErrors.CodeDuplicateIdentity,
			"a member with this national ID already exists", existing.MemberNumber)
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		g.logger.WarnContext(ctx, "duplicate guard national ID lookup failed, deferring to store constraints",
			"org_id", orgID.String(),
			"error", err,
		)
	}
	return nil
}
