package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/estate-marketplace/internal/domain/repository"
	"github.com/oksasatya/estate-marketplace/internal/session"
)

// LoginGuard tracks failed logins per email.
type LoginGuard interface {
	// Check returns *domain.AccountLockedError while email is locked.
	Check(ctx context.Context, email string) error
	// RecordFailure counts a failure and returns *domain.AccountLockedError
	// when it exhausts the allowance.
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// RequestMeta describes where a request came from, for audit and mail.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// AuthResult is the outcome of a successful login or registration.
type AuthResult struct {
	User    *entity.User
	Session *entity.Session
}

type AuthService struct {
	Provider  IdentityProvider
	Federated *FederatedProvider
	Registry  *Registry
	Guard     LoginGuard
	Notifier  Notifier
	Audit     repo.AuditRepository
	Logger    *logrus.Logger
}

func NewAuthService(provider IdentityProvider, federated *FederatedProvider, reg *Registry, guard LoginGuard, notifier Notifier, audit repo.AuditRepository, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Provider:  provider,
		Federated: federated,
		Registry:  reg,
		Guard:     guard,
		Notifier:  notifier,
		Audit:     audit,
		Logger:    logger,
	}
}

// Register creates the account and starts a session in store.
func (s *AuthService) Register(ctx context.Context, store *session.Store, in NewUserInput, meta RequestMeta) (*AuthResult, error) {
	u, err := s.Provider.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	res, err := s.startSession(ctx, store, u)
	if err != nil {
		return nil, err
	}
	s.record(ctx, u.ID, u.Email, "register", meta, nil)
	if s.Notifier != nil {
		if nErr := s.Notifier.Welcome(ctx, *u); nErr != nil {
			s.warn(nErr, "enqueue welcome email failed", logrus.Fields{"user_id": u.ID})
		}
	}
	return res, nil
}

// Login verifies credentials and starts a session in store. Provider outages
// leave both the lockout counter and any existing session untouched.
func (s *AuthService) Login(ctx context.Context, store *session.Store, email, password string, meta RequestMeta) (*AuthResult, error) {
	if s.Guard != nil {
		if err := s.Guard.Check(ctx, email); err != nil {
			if errors.Is(err, domain.ErrAccountLocked) {
				s.record(ctx, "", email, "locked", meta, nil)
				return nil, err
			}
			s.warn(err, "login guard check failed", logrus.Fields{"email": email})
		}
	}

	u, err := s.Provider.Authenticate(ctx, email, password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		s.record(ctx, "", email, "login_fail", meta, nil)
		if s.Guard != nil {
			if gErr := s.Guard.RecordFailure(ctx, email); gErr != nil {
				if errors.Is(gErr, domain.ErrAccountLocked) {
					s.record(ctx, "", email, "locked", meta, nil)
					return nil, gErr
				}
				s.warn(gErr, "record login failure failed", logrus.Fields{"email": email})
			}
		}
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if s.Guard != nil {
		if gErr := s.Guard.Reset(ctx, email); gErr != nil {
			s.warn(gErr, "reset login failures failed", logrus.Fields{"email": email})
		}
	}
	res, err := s.startSession(ctx, store, u)
	if err != nil {
		return nil, err
	}
	s.record(ctx, u.ID, u.Email, "login_ok", meta, nil)
	return res, nil
}

// LoginFederated signs in with an assertion from the federated provider.
func (s *AuthService) LoginFederated(ctx context.Context, store *session.Store, assertion string, meta RequestMeta) (*AuthResult, error) {
	if s.Federated == nil {
		return nil, domain.Unavailable(errors.New("federated login not configured"))
	}
	u, err := s.Federated.Authenticate(ctx, assertion)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			s.record(ctx, "", "", "login_fail", meta, map[string]any{"method": "federated"})
		}
		return nil, err
	}
	res, err := s.startSession(ctx, store, u)
	if err != nil {
		return nil, err
	}
	s.record(ctx, u.ID, u.Email, "login_ok", meta, map[string]any{"method": "federated"})
	return res, nil
}

// Logout clears the session in store. It succeeds when there is none.
func (s *AuthService) Logout(ctx context.Context, store *session.Store, meta RequestMeta) error {
	sess, err := store.Get(ctx)
	if err != nil {
		return err
	}
	if err := store.Clear(ctx); err != nil {
		return err
	}
	if sess != nil {
		s.record(ctx, sess.ID, sess.Email, "logout", meta, nil)
	}
	return nil
}

// Resolve authenticates a request: the presented token must match the live
// session in store, and the returned user is read fresh from the registry so
// role and plan are never taken from the session snapshot.
func (s *AuthService) Resolve(ctx context.Context, store *session.Store, token string) (*entity.User, *entity.Session, error) {
	if token == "" {
		return nil, nil, domain.ErrUnauthenticated
	}
	sess, err := store.Get(ctx)
	if err != nil {
		return nil, nil, domain.Unavailable(err)
	}
	if sess == nil {
		return nil, nil, domain.ErrSessionExpired
	}
	if subtle.ConstantTimeCompare([]byte(sess.Token), []byte(token)) != 1 {
		return nil, nil, domain.ErrUnauthenticated
	}
	u, err := s.Registry.GetUserByID(ctx, sess.ID)
	if errors.Is(err, domain.ErrUserNotFound) {
		_ = store.Clear(ctx)
		return nil, nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, nil, domain.Unavailable(err)
	}
	return u, sess, nil
}

func (s *AuthService) startSession(ctx context.Context, store *session.Store, u *entity.User) (*AuthResult, error) {
	if _, err := store.Create(ctx, u.Identity()); err != nil {
		return nil, err
	}
	sess, err := store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domain.ErrSessionExpired
	}
	return &AuthResult{User: u, Session: sess}, nil
}

func (s *AuthService) record(ctx context.Context, userID, email, action string, meta RequestMeta, md map[string]any) {
	recordAudit(ctx, s.Audit, s.Logger, repo.AuditEntry{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Metadata:  md,
	})
}

func (s *AuthService) warn(err error, msg string, fields logrus.Fields) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithFields(fields).Warn(msg)
	}
}

// recordAudit writes e without failing the caller; the audit log is best effort.
func recordAudit(ctx context.Context, audit repo.AuditRepository, logger *logrus.Logger, e repo.AuditEntry) {
	if audit == nil {
		return
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := audit.Record(c, e); err != nil && logger != nil {
		logger.WithError(err).WithField("action", e.Action).Warn("audit record failed")
	}
}
