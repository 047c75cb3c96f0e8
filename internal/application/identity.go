package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	"github.com/oksasatya/estate-marketplace/pkg/helpers"
)

// DefaultProviderTimeout bounds a single identity provider round trip.
const DefaultProviderTimeout = 5 * time.Second

// IdentityProvider verifies credentials and creates accounts. Implementations
// may be remote; failures to reach them surface as domain.ErrProviderUnavailable.
type IdentityProvider interface {
	Authenticate(ctx context.Context, email, password string) (*entity.User, error)
	Register(ctx context.Context, in NewUserInput) (*entity.User, error)
}

// LocalProvider serves identities from the Registry.
type LocalProvider struct {
	Registry *Registry
	Timeout  time.Duration
}

func NewLocalProvider(reg *Registry, timeout time.Duration) *LocalProvider {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &LocalProvider{Registry: reg, Timeout: timeout}
}

func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	return withTimeout(ctx, p.Timeout, func(ctx context.Context) (*entity.User, error) {
		u, err := p.Registry.VerifyUserPassword(ctx, email, password)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, domain.ErrInvalidCredentials
		}
		return u, nil
	})
}

func (p *LocalProvider) Register(ctx context.Context, in NewUserInput) (*entity.User, error) {
	return withTimeout(ctx, p.Timeout, func(ctx context.Context) (*entity.User, error) {
		return p.Registry.CreateUser(ctx, in)
	})
}

// AssertionVerifier validates a signed identity assertion from a federated provider.
type AssertionVerifier interface {
	Verify(token string) (*helpers.AssertionClaims, error)
}

// FederatedProvider signs users in from assertions issued by a trusted
// external provider. The first sign-in creates the account with an unusable
// random password.
type FederatedProvider struct {
	Verifier AssertionVerifier
	Registry *Registry
	Timeout  time.Duration
}

func NewFederatedProvider(v AssertionVerifier, reg *Registry, timeout time.Duration) *FederatedProvider {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &FederatedProvider{Verifier: v, Registry: reg, Timeout: timeout}
}

func (p *FederatedProvider) Authenticate(ctx context.Context, assertion string) (*entity.User, error) {
	claims, err := p.Verifier.Verify(assertion)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return withTimeout(ctx, p.Timeout, func(ctx context.Context) (*entity.User, error) {
		u, err := p.Registry.GetUserByEmail(ctx, claims.Email)
		if err != nil || u != nil {
			return u, err
		}
		secret, err := helpers.NewSalt()
		if err != nil {
			return nil, err
		}
		name := claims.Name
		if name == "" {
			name, _, _ = strings.Cut(claims.Email, "@")
		}
		u, err = p.Registry.CreateUser(ctx, NewUserInput{Name: name, Email: claims.Email, Password: secret})
		if errors.Is(err, domain.ErrDuplicateEmail) {
			// concurrent first sign-in created it
			return p.Registry.GetUserByEmail(ctx, claims.Email)
		}
		return u, err
	})
}

// withTimeout runs fn under a deadline. A deadline hit or an infrastructure
// failure is reported as ErrProviderUnavailable; domain outcomes pass through.
func withTimeout(ctx context.Context, d time.Duration, fn func(context.Context) (*entity.User, error)) (*entity.User, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		u   *entity.User
		err error
	}
	ch := make(chan result, 1)
	go func() {
		u, err := fn(ctx)
		ch <- result{u, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil && !isDomainError(r.err) {
			return nil, domain.Unavailable(r.err)
		}
		return r.u, r.err
	case <-ctx.Done():
		return nil, domain.Unavailable(fmt.Errorf("provider call: %w", ctx.Err()))
	}
}

func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidCredentials,
		domain.ErrDuplicateEmail,
		domain.ErrAccountLocked,
		domain.ErrUserNotFound,
		domain.ErrProviderUnavailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
