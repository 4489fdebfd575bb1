package provisioning

import (
	"context"
	"fmt"
	"log/slog"

	"member-gateway/internal/audit"
	"member-gateway/internal/identity"
	"member-gateway/internal/member/models"
	"member-gateway/internal/member/store"
	"member-gateway/internal/platform/metrics"
	dErrors "member-gateway/pkg/domain-errors"
)

// Outcome is what the caller gets back from a completed submission. Action
// distinguishes a fresh record from an idempotent rejoin; the message is
// phrased accordingly so the caller never presents "created" for a record
// that already existed.
type Outcome struct {
	Record       *models.MembershipRecord
	Action       models.Action
	MemberNumber string
	TempPassword string
	Attempts     int
	Message      string
}

// Reporter translates workflow results into everything that happens after the
// stores are settled: metrics, audit events, the recent-registration cache,
// welcome notices, and caller-facing messages. Side effects that must happen
// at most once per membership are keyed on ActionCreated, so an idempotent
// rejoin never repeats them.
type Reporter struct {
	metrics *metrics.Metrics
	audit   *audit.Publisher
	cache   RecentCache
	logger  *slog.Logger
}

func NewReporter(m *metrics.Metrics, publisher *audit.Publisher, cache RecentCache, logger *slog.Logger) *Reporter {
	return &Reporter{metrics: m, audit: publisher, cache: cache, logger: logger}
}

// Success reports a completed registration and builds the caller outcome.
func (r *Reporter) Success(ctx context.Context, variant Variant, req *models.RegistrationRequest, result *store.RegisterResult, provisioned *identity.Provisioned, attempts int) *Outcome {
	record := result.Record

	if r.metrics != nil {
		r.metrics.RegistrationsTotal.WithLabelValues(string(variant), string(result.Action)).Inc()
	}

	event := audit.Event{
		OrgID:        record.OrgID.String(),
		MemberNumber: record.MemberNumber,
		IdentityID:   record.IdentityID.String(),
		Variant:      string(variant),
	}
	switch result.Action {
	case models.ActionCreated:
		event.Action = string(audit.EventMemberCreated)
	default:
		event.Action = string(audit.EventMemberRejoined)
	}
	r.audit.Emit(ctx, event)

	if result.Action == models.ActionCreated {
		if r.cache != nil {
			r.cache.Set(ctx, record.OrgID, record.Email, record.MemberNumber)
		}
		if !req.SkipWelcomeNotice {
			r.audit.EmitWelcomeNotice(ctx, audit.Event{
				OrgID:        record.OrgID.String(),
				MemberNumber: record.MemberNumber,
				IdentityID:   record.IdentityID.String(),
				Variant:      string(variant),
			})
		}
	}

	r.logger.InfoContext(ctx, "registration completed",
		"variant", string(variant),
		"action", string(result.Action),
		"member_number", record.MemberNumber,
		"attempts", attempts,
	)

	outcome := &Outcome{
		Record:       record,
		Action:       result.Action,
		MemberNumber: record.MemberNumber,
		Attempts:     attempts,
	}
	if provisioned != nil {
		outcome.TempPassword = provisioned.TempPassword
	}
	switch result.Action {
	case models.ActionCreated:
		outcome.Message = fmt.Sprintf("membership created, member number %s", record.MemberNumber)
	default:
		outcome.Message = fmt.Sprintf("an active membership already exists for this account, member number %s", record.MemberNumber)
	}
	return outcome
}

// Failure reports a terminal failure and returns the error the caller should
// surface, rewritten with a specific human-readable message per failure kind.
// Nothing comes back as a bare "something went wrong": unknown failures carry
// the underlying diagnostic verbatim.
func (r *Reporter) Failure(ctx context.Context, variant Variant, req *models.RegistrationRequest, err error) error {
	code := dErrors.CodeOf(err)

	if r.metrics != nil {
		r.metrics.RegistrationFailures.WithLabelValues(string(code)).Inc()
		switch code {
		case dErrors.CodeDuplicateEmail:
			r.metrics.DuplicatesRejected.WithLabelValues("email").Inc()
		case dErrors.CodeDuplicateIdentity:
			r.metrics.DuplicatesRejected.WithLabelValues("national_id").Inc()
		}
	}

	switch code {
	case dErrors.CodeDuplicateEmail, dErrors.CodeDuplicateIdentity:
		r.audit.Emit(ctx, audit.Event{
			Action:       string(audit.EventDuplicateRejected),
			OrgID:        req.OrgID,
			MemberNumber: dErrors.HintOf(err),
			Variant:      string(variant),
			Reason:       string(code),
		})
	default:
		r.audit.Emit(ctx, audit.Event{
			Action:  string(audit.EventProvisioningFailed),
			OrgID:   req.OrgID,
			Variant: string(variant),
			Reason:  string(code),
		})
	}

	r.logger.WarnContext(ctx, "registration failed",
		"variant", string(variant),
		"code", string(code),
		"error", err,
	)

	return dErrors.Wrap(err, code, failureMessage(code, err))
}

func failureMessage(code dErrors.Code, err error) string {
	switch code {
	case dErrors.CodeDuplicateEmail:
		if hint := dErrors.HintOf(err); hint != "" {
			return fmt.Sprintf("this email already belongs to member %s", hint)
		}
		return "a member with this email already exists"
	case dErrors.CodeDuplicateIdentity:
		if hint := dErrors.HintOf(err); hint != "" {
			return fmt.Sprintf("this national ID is already registered to member %s", hint)
		}
		return "a member with this national ID already exists"
	case dErrors.CodeValidation:
		return err.Error()
	case dErrors.CodeUnauthorized:
		return "not authorized to register members for this organization"
	case dErrors.CodeUserNotFound:
		return "the account was created but has not finished activating; try again shortly"
	case dErrors.CodeNetwork, dErrors.CodeRPC:
		return "a connection problem interrupted registration; nothing was lost, try again"
	case dErrors.CodeUnknown:
		msg := fmt.Sprintf("registration failed: %s", err.Error())
		if hint := dErrors.HintOf(err); hint != "" {
			msg = fmt.Sprintf("%s (%s)", msg, hint)
		}
		return msg
	default:
		return err.Error()
	}
}
