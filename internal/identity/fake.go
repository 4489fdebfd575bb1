package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	id "member-gateway/pkg/domain"
	dErrors "member-gateway/pkg/domain-errors"
	"member-gateway/pkg/secrets"
)

// FakeClient is an in-memory identity subsystem for tests and local runs.
// It enforces the one-identity-per-email invariant and notifies an optional
// hook on creation so the caller can emulate the propagation gap.
type FakeClient struct {
	mu        sync.Mutex
	byEmail   map[string]id.IdentityID
	hashes    map[id.IdentityID]string
	calls     int
	onCreate  func(id.IdentityID)
	failWith  error
	failsLeft int
}

// NewFake constructs an empty fake identity subsystem.
func NewFake() *FakeClient {
	return &FakeClient{
		byEmail: make(map[string]id.IdentityID),
		hashes:  make(map[id.IdentityID]string),
	}
}

// OnCreate registers a hook invoked after each successful identity creation.
// The dev wiring uses it to mark the identity visible in the member store
// after the configured propagation delay.
func (f *FakeClient) OnCreate(hook func(id.IdentityID)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onCreate = hook
}

// FailNext makes the next n CreateIdentity calls fail with err.
func (f *FakeClient) FailNext(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failsLeft = n
	f.failWith = err
}

// Calls reports how many CreateIdentity calls were made.
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeClient) CreateIdentity(ctx context.Context, params CreateParams) (id.IdentityID, error) {
	if err := ctx.Err(); err != nil {
		return id.IdentityID{}, err
	}

	f.mu.Lock()
	f.calls++
	if f.failsLeft > 0 {
		f.failsLeft--
		err := f.failWith
		f.mu.Unlock()
		return id.IdentityID{}, err
	}

	key := strings.ToLower(params.Email)
	if _, exists := f.byEmail[key]; exists {
		f.mu.Unlock()
		return id.IdentityID{}, dErrors.New(dErrors.CodeDuplicateEmail, "an identity with this email already exists")
	}

	hash, err := secrets.Hash(params.Password)
	if err != nil {
		f.mu.Unlock()
		return id.IdentityID{}, err
	}

	identityID := id.IdentityID(uuid.New())
	f.byEmail[key] = identityID
	f.hashes[identityID] = hash
	hook := f.onCreate
	f.mu.Unlock()

	if hook != nil {
		hook(identityID)
	}
	return identityID, nil
}
