package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/gengocodes/gensupply-backend/auth"
	"github.com/gengocodes/gensupply-backend/models"
	"github.com/gengocodes/gensupply-backend/store"
)

// Session is a freshly minted token together with its decoded claims.
type Session struct {
	Token  string
	Claims *auth.Claims
}

// AuthService handles registration, login and profile updates.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) error
	Login(ctx context.Context, req models.LoginRequest) (*Session, error)
	UpdateName(ctx context.Context, claims *auth.Claims, name string) (*Session, error)
}

type authService struct {
	users        store.UserStore
	hasher       auth.PasswordHasher
	tokens       auth.TokenService
	uniformLogin bool

	decoyOnce sync.Once
	decoyHash string
}

// NewAuthService creates an AuthService. When uniformLogin is set, unknown
// emails and wrong passwords share one client message.
func NewAuthService(users store.UserStore, hasher auth.PasswordHasher, tokens auth.TokenService, uniformLogin bool) AuthService {
	return &authService{
		users:        users,
		hasher:       hasher,
		tokens:       tokens,
		uniformLogin: uniformLogin,
	}
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	if strings.TrimSpace(req.Name) == "" || req.Email == "" || req.Password == "" {
		return newError(KindInvalid, MsgMissingRegisterFields, nil)
	}

	exists, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return newError(KindInternal, MsgCheckEmailFailed, err)
	}
	if exists {
		return newError(KindDuplicate, MsgDuplicateEmail, ErrDuplicateEmail)
	}

	hash, err := s.hasher.Hash(req.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return newError(KindInvalid, MsgPasswordTooLong, err)
	}
	if err != nil {
		return newError(KindInternal, MsgHashFailed, err)
	}

	user := &models.User{Name: req.Name, Email: req.Email, Password: hash}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can pass the existence check first.
		if errors.Is(err, store.ErrDuplicate) {
			return newError(KindDuplicate, MsgDuplicateEmail, ErrDuplicateEmail)
		}
		return newError(KindInternal, MsgInsertFailed, err)
	}
	return nil
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*Session, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, newError(KindInvalid, MsgMissingLoginFields, nil)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		s.compareDecoy(req.Password)
		return nil, newError(KindUnauthenticated, s.loginMessage(MsgUnregistered), ErrUnregistered)
	}
	if err != nil {
		return nil, newError(KindInternal, MsgLookupFailed, err)
	}

	ok, err := s.hasher.Verify(req.Password, user.Password)
	if err != nil {
		return nil, newError(KindInternal, MsgCompareFailed, err)
	}
	if !ok {
		return nil, newError(KindUnauthenticated, s.loginMessage(MsgWrongPassword), ErrWrongPassword)
	}

	return s.issue(auth.Identity{ID: user.ID, Name: user.Name, Email: user.Email})
}

// UpdateName renames the caller identified by claims and mints a new session
// reflecting the new name.
func (s *authService) UpdateName(ctx context.Context, claims *auth.Claims, name string) (*Session, error) {
	if strings.TrimSpace(name) == "" {
		return nil, newError(KindInvalid, MsgMissingName, nil)
	}

	if err := s.users.UpdateNameByEmail(ctx, claims.Email, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(KindUnauthenticated, MsgUpdateNameFailed, err)
		}
		return nil, newError(KindInternal, MsgUpdateNameFailed, err)
	}

	return s.issue(auth.Identity{ID: claims.ID, Name: name, Email: claims.Email})
}

func (s *authService) issue(identity auth.Identity) (*Session, error) {
	token, claims, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, newError(KindInternal, MsgTokenFailed, err)
	}
	return &Session{Token: token, Claims: claims}, nil
}

// compareDecoy spends one hash comparison so unknown emails take as long as
// wrong passwords.
func (s *authService) compareDecoy(password string) {
	s.decoyOnce.Do(func() {
		s.decoyHash, _ = s.hasher.Hash("unregistered-account-decoy")
	})
	if s.decoyHash != "" {
		_, _ = s.hasher.Verify(password, s.decoyHash)
	}
}

func (s *authService) loginMessage(specific string) string {
	if s.uniformLogin {
		return MsgInvalidCredentials
	}
	return specific
}
