package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	id "member-gateway/pkg/domain"
	dErrors "member-gateway/pkg/domain-errors"
	"member-gateway/pkg/platform/circuit"
)

// Error codes returned by the identity subsystem.
const (
	errCodeEmailExists  = "email_exists"
	errCodeWeakPassword = "weak_password"
	errCodeNetwork      = "network_error"
	errCodeUnauthorized = "unauthorized"
)

// HTTPClient talks to the identity subsystem's REST surface.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// NewHTTPClient constructs a client for the identity subsystem.
// The http.Client's timeout is the only per-call timeout in the workflow; the
// bounded retry count is the de facto timeout mechanism above it.
func NewHTTPClient(baseURL, apiKey string, client *http.Client, logger *slog.Logger) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
		breaker: circuit.New("identity-subsystem"),
		logger:  logger,
	}
}

type createIdentityRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Verified bool   `json:"verified"`
}

type createIdentityResponse struct {
	IdentityID string `json:"identity_id,omitempty"`
	ErrorCode  string `json:"error_code,omitempty"`
	Message    string `json:"message,omitempty"`
}

// CreateIdentity calls create_identity on the identity subsystem and maps its
// error codes into the workflow taxonomy.
//
// A circuit breaker tracks consecutive transport failures. There is no cached
// fallback for identity creation, so every call still reaches the subsystem
// (half-open probing), but state transitions are logged and the retryable
// error is annotated while the circuit is open.
func (c *HTTPClient) CreateIdentity(ctx context.Context, params CreateParams) (id.IdentityID, error) {
	body, err := json.Marshal(createIdentityRequest{
		Email:    params.Email,
		Password: params.Password,
		Verified: params.Verified,
	})
	if err != nil {
		return id.IdentityID{}, dErrors.Wrap(err, dErrors.CodeInternal, "encode identity request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/identities", bytes.NewReader(body))
	if err != nil {
		return id.IdentityID{}, dErrors.Wrap(err, dErrors.CodeInternal, "build identity request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Context cancellation surfaces as-is so the workflow can abort
		// instead of classifying the failure as retryable.
		if ctx.Err() != nil {
			return id.IdentityID{}, ctx.Err()
		}
		return id.IdentityID{}, c.recordFailure(ctx, dErrors.Wrap(err, dErrors.CodeNetwork, "identity subsystem unreachable"))
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read path

	var decoded createIdentityResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return id.IdentityID{}, c.recordFailure(ctx, dErrors.Wrap(err, dErrors.CodeNetwork, "decode identity response"))
	}

	// A well-formed response means the subsystem is reachable, even when it
	// rejects the request on domain grounds.
	if c.breaker.OnSuccess() == circuit.Closed {
		c.logger.InfoContext(ctx, "identity subsystem circuit closed", "circuit", c.breaker.Name())
	}

	if decoded.ErrorCode != "" || resp.StatusCode >= 400 {
		return id.IdentityID{}, c.mapError(ctx, resp.StatusCode, decoded)
	}

	identityID, err := id.ParseIdentityID(decoded.IdentityID)
	if err != nil {
		return id.IdentityID{}, dErrors.Wrap(err, dErrors.CodeNetwork, "identity subsystem returned malformed identity_id")
	}
	return identityID, nil
}

func (c *HTTPClient) recordFailure(ctx context.Context, err error) error {
	if c.breaker.OnFailure() == circuit.Opened {
		c.logger.ErrorContext(ctx, "identity subsystem circuit opened",
			"circuit", c.breaker.Name(),
			"error", err,
		)
	}
	if c.breaker.IsOpen() {
		return dErrors.Wrap(err, dErrors.CodeNetwork, "identity subsystem circuit open")
	}
	return err
}

func (c *HTTPClient) mapError(ctx context.Context, status int, resp createIdentityResponse) error {
	msg := resp.Message
	switch resp.ErrorCode {
	case errCodeEmailExists:
		if msg == "" {
			msg = "an identity with this email already exists"
		}
		return dErrors.New(dErrors.CodeDuplicateEmail, msg)
	case errCodeWeakPassword:
		if msg == "" {
			msg = "password does not meet the identity subsystem policy"
		}
		return dErrors.New(dErrors.CodeValidation, msg)
	case errCodeUnauthorized:
		if msg == "" {
			msg = "caller is not authorized to create identities"
		}
		return dErrors.New(dErrors.CodeUnauthorized, msg)
	case errCodeNetwork:
		if msg == "" {
			msg = "identity subsystem reported a transient failure"
		}
		return dErrors.New(dErrors.CodeNetwork, msg)
	}

	c.logger.WarnContext(ctx, "unrecognized identity subsystem error",
		"status", status,
		"error_code", resp.ErrorCode,
	)
	if status >= 500 {
		return dErrors.New(dErrors.CodeNetwork, fmt.Sprintf("identity subsystem error (status %d)", status))
	}
	if msg == "" {
		msg = fmt.Sprintf("identity subsystem rejected the request (status %d)", status)
	}
	return dErrors.New(dErrors.CodeUnknown, msg)
}
