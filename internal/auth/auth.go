// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	issuer          = "rostr"
	defaultTokenTTL = 8 * time.Hour

	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

// Claims carried by rostr tokens. Subject holds the user id.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service signs tokens with an HMAC secret.
type Service struct {
	hmac       []byte
	ttl        time.Duration
	now        func() time.Time
	bcryptCost int

	dummyOnce sync.Once
	dummy     []byte
}

// Option configures a Service.
type Option func(*Service)

// WithTokenTTL sets how long issued tokens stay valid.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithBcryptCost sets the password hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// NewService returns a Service signing with secret.
func NewService(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	s := &Service{
		hmac:       []byte(secret),
		ttl:        defaultTokenTTL,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IssueToken returns a signed HS256 token for the user and its expiry.
func (s *Service) IssueToken(userID, username string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.hmac)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

// Parse verifies a token and returns its claims.
func (s *Service) Parse(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return s.hmac, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	c, ok := token.Claims.(*Claims)
	if !ok || c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}

// HashPassword returns a bcrypt hash of password. Passwords longer than
// MaxPasswordBytes yield ErrPasswordTooLong.
func (s *Service) HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword compares password with a stored hash.
func (s *Service) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// RejectUnknown runs a bcrypt comparison against a fixed hash and always
// returns ErrInvalidCredentials. Login calls it for unknown usernames so
// they take as long to refuse as a wrong password.
func (s *Service) RejectUnknown(password string) error {
	s.dummyOnce.Do(func() {
		s.dummy, _ = bcrypt.GenerateFromPassword([]byte("rostr-unknown-user"), s.bcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummy, []byte(password))
	return ErrInvalidCredentials
}
