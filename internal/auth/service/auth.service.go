package service

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Identity is the verified content of a session token.
type Identity struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Verifier checks session tokens. Article mutations depend on this rather than on Service.
type Verifier interface {
	Verify(token string) (Identity, error)
}

type Options struct {
	Username string
	Password string
	Secret   string
	Issuer   string
	TTL      time.Duration
	Now      func() time.Time
}

type Service struct {
	username string
	password string
	secret   []byte
	issuer   string
	ttl      time.Duration
	now      func() time.Time
}

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func NewService(opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		username: opts.Username,
		password: opts.Password,
		secret:   []byte(opts.Secret),
		issuer:   opts.Issuer,
		ttl:      opts.TTL,
		now:      opts.Now,
	}
}

// Login issues a signed token when both fields match the configured pair.
// Both comparisons always run so the response does not depend on which field was wrong.
func (s *Service) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password))
	if userOK&passOK != 1 || s.password == "" {
		return "", ErrInvalidCredentials
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	return token.SignedString(s.secret)
}

// Verify rejects missing, malformed, badly signed, foreign and expired tokens with ErrUnauthorized.
func (s *Service) Verify(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrUnauthorized
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return Identity{}, ErrUnauthorized
	}
	if c.Subject != s.username || c.Username != s.username {
		return Identity{}, ErrUnauthorized
	}
	return Identity{Username: c.Username, ExpiresAt: c.ExpiresAt.Time}, nil
}
