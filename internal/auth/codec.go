package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Codec encodes and decodes signed session tokens. Pure transform: no
// I/O, and raw secrets are never logged.
type Codec struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	leeway   time.Duration
}

type CodecConfig struct {
	Secret   string
	Issuer   string
	Audience string
	// TokenTTL bounds a session. Defaults to 15m.
	TokenTTL time.Duration
	// Leeway is the tolerated clock skew on expiry checks. Defaults to
	// 30s and is capped at 60s.
	Leeway time.Duration
}

func NewCodec(cfg CodecConfig) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 15 * time.Minute
	}
	if cfg.Leeway <= 0 {
		cfg.Leeway = 30 * time.Second
	}
	if cfg.Leeway > time.Minute {
		cfg.Leeway = time.Minute
	}
	return &Codec{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TokenTTL,
		leeway:   cfg.Leeway,
	}, nil
}

func (c *Codec) TokenTTL() time.Duration { return c.ttl }

// Encode signs the claims after stamping iat/exp/jti. The tenant
// invariant is checked before signing; an invariant-violating claims
// set fails with ErrClaimsInvariant and is never turned into a token.
// Timestamps are absolute so verification survives clock drift within
// the configured leeway.
func (c *Codec) Encode(now time.Time, claims Claims) (string, time.Time, error) {
	if err := claims.Validate(); err != nil {
		return "", time.Time{}, err
	}

	expiresAt := now.Add(c.ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Audience:  audienceOrNil(c.audience),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Decode verifies signature and expiry and returns the claims.
//
// Failure kinds are deliberately split: ErrTokenExpired tells a client
// to re-authenticate; ErrTokenSignatureInvalid and ErrTokenMalformed
// are hostile/corrupt input and share one public message upstream.
func (c *Codec) Decode(tokenString string, now time.Time) (Claims, error) {
	var claims Claims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(c.leeway),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	if c.audience != "" {
		opts = append(opts, jwt.WithAudience(c.audience))
	}

	parser := jwt.NewParser(opts...)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrTokenSignatureInvalid
		default:
			return Claims{}, ErrTokenMalformed
		}
	}
	return claims, nil
}

func audienceOrNil(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
