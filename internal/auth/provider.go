package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"student-analyzer/internal/app"
	"student-analyzer/internal/domain"
	"student-analyzer/internal/logger"
)

// Roles stored on accounts and carried in tokens.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

const minPasswordLen = 6

// User is the identity behind a session.
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session is a signed-in user with its bearer token.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Event reports an auth state change.
type Event struct {
	UID      string `json:"uid"`
	SignedIn bool   `json:"signedIn"`
}

// Revoker remembers signed-out token ids until they would have expired anyway.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	Revoked(ctx context.Context, tokenID string) (bool, error)
}

// Provider is the thin client over the identity provider.
type Provider interface {
	CreateAccount(ctx context.Context, email, password, role string) (User, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, token string) (User, error)
	CurrentUser(ctx context.Context, token string) (User, error)
	Watch() (<-chan Event, func())
}

// LocalProvider keeps bcrypt-hashed accounts in the document store, keyed by
// lower-cased email, and issues JWT sessions.
type LocalProvider struct {
	store   app.DocumentStore
	tokens  *Tokens
	revoker Revoker
	events  *app.Hub[Event]
	cost    int
	log     zerolog.Logger
}

func NewLocalProvider(store app.DocumentStore, tokens *Tokens, revoker Revoker) *LocalProvider {
	return &LocalProvider{
		store:   store,
		tokens:  tokens,
		revoker: revoker,
		events:  app.NewHub[Event](16),
		cost:    bcrypt.DefaultCost,
		log:     logger.Get().With().Str("component", "auth").Logger(),
	}
}

// WithCost is test-only; bcrypt.MinCost keeps hashing fast.
func (p *LocalProvider) WithCost(cost int) *LocalProvider {
	p.cost = cost
	return p
}

func (p *LocalProvider) CreateAccount(ctx context.Context, email, password, role string) (User, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, domain.Invalid("email", email, "not a valid email address")
	}
	if len(password) < minPasswordLen {
		return User{}, domain.Invalid("password", "", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if role != RoleStudent && role != RoleTeacher {
		return User{}, domain.Invalid("role", role, "role must be student or teacher")
	}

	_, err := p.store.Get(ctx, app.CollectionAccounts, email)
	switch {
	case err == nil:
		return User{}, domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrNotFound):
		return User{}, fmt.Errorf("lookup account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return User{}, err
	}
	user := User{UID: uuid.NewString(), Email: email, Role: role}
	err = p.store.Set(ctx, app.CollectionAccounts, email, map[string]any{
		"uid":          user.UID,
		"email":        email,
		"role":         role,
		"passwordHash": string(hash),
		"createdAt":    time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return User{}, fmt.Errorf("create account: %w", err)
	}
	p.log.Info().Str("uid", user.UID).Str("role", role).Msg("account created")
	return user, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	doc, err := p.store.Get(ctx, app.CollectionAccounts, email)
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup account: %w", err)
	}
	hash, _ := doc.Data["passwordHash"].(string)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return Session{}, domain.ErrInvalidCredentials
	}

	uid, _ := doc.Data["uid"].(string)
	role, _ := doc.Data["role"].(string)
	user := User{UID: uid, Email: email, Role: role}
	token, claims, err := p.tokens.Issue(user)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	p.events.Publish(allUsers, Event{UID: user.UID, SignedIn: true})
	return Session{Token: token, User: user, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// SignOut revokes token and returns the user it belonged to.
func (p *LocalProvider) SignOut(ctx context.Context, token string) (User, error) {
	claims, err := p.tokens.Parse(token)
	if err != nil {
		return User{}, domain.ErrUnauthenticated
	}
	if err := p.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return User{}, fmt.Errorf("revoke token: %w", err)
	}
	user := User{UID: claims.Sub, Email: claims.Email, Role: claims.Role}
	p.events.Publish(allUsers, Event{UID: user.UID})
	return user, nil
}

func (p *LocalProvider) CurrentUser(ctx context.Context, token string) (User, error) {
	claims, err := p.tokens.Parse(token)
	if err != nil {
		return User{}, domain.ErrUnauthenticated
	}
	revoked, err := p.revoker.Revoked(ctx, claims.ID)
	if err != nil {
		return User{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return User{}, domain.ErrUnauthenticated
	}
	return User{UID: claims.Sub, Email: claims.Email, Role: claims.Role}, nil
}

// Watch streams sign-in and sign-out events. The caller must invoke cancel.
func (p *LocalProvider) Watch() (<-chan Event, func()) {
	return p.events.Subscribe(allUsers)
}

const allUsers = "*"

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
