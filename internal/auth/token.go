package auth

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/commerce-auth/internal/config"
)

const (
	claimSubject   = "sub"
	claimIssuedAt  = "iat"
	claimExpiresAt = "exp"
)

// TokenCodec issues and verifies HS256 tokens. It holds no mutable state and
// is safe for concurrent use.
type TokenCodec struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

// CodecOption customizes a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewTokenCodec builds a codec from the signing settings.
func NewTokenCodec(cfg config.SecurityConfig, opts ...CodecOption) *TokenCodec {
	validity := cfg.DefaultValidity()
	if validity < 0 {
		validity = 0
	}
	c := &TokenCodec{
		secret:   cfg.SecretBytes(),
		validity: validity,
		now:      time.Now,
		// Expiry is judged separately by IsExpired, so claims validation is off here.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
			jwt.WithStrictDecoding(),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue signs a token for subject valid for the configured default duration.
func (c *TokenCodec) Issue(subject string, claims map[string]any) (string, error) {
	return c.IssueWithValidity(subject, claims, c.validity)
}

// IssueWithValidity signs a token for subject that expires validity after now.
// Caller claims are copied; sub, iat and exp always take the computed values.
func (c *TokenCodec) IssueWithValidity(subject string, claims map[string]any, validity time.Duration) (string, error) {
	if validity < 0 {
		validity = 0
	}
	issuedAt := c.now()

	payload := make(jwt.MapClaims, len(claims)+3)
	for k, v := range claims {
		payload[k] = v
	}
	payload[claimSubject] = subject
	payload[claimIssuedAt] = jwt.NewNumericDate(issuedAt)
	payload[claimExpiresAt] = jwt.NewNumericDate(issuedAt.Add(validity))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// IsValid reports whether token is well formed and carries a matching HS256
// signature. Expiry is not considered.
func (c *TokenCodec) IsValid(token string) bool {
	_, err := c.verify(token)
	return err == nil
}

// Claims returns the full payload of a token whose signature verifies.
func (c *TokenCodec) Claims(token string) (map[string]any, bool) {
	claims, err := c.verify(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// Subject decodes the sub claim without checking the signature. Callers must
// have already checked IsValid.
func (c *TokenCodec) Subject(token string) (string, bool) {
	claims, ok := c.decode(token)
	if !ok {
		return "", false
	}
	if _, present := claims[claimSubject]; !present {
		return "", false
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", false
	}
	return sub, true
}

// Expiry decodes the exp claim without checking the signature.
func (c *TokenCodec) Expiry(token string) (time.Time, bool) {
	claims, ok := c.decode(token)
	if !ok {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// IsExpired reports whether the token's expiry lies strictly in the past.
// An undecodable token is reported as not expired; combine with IsValid.
func (c *TokenCodec) IsExpired(token string) bool {
	exp, ok := c.Expiry(token)
	if !ok {
		return false
	}
	return exp.Before(c.now())
}

func (c *TokenCodec) verify(token string) (jwt.MapClaims, error) {
	parsed, err := c.parser.ParseWithClaims(token, jwt.MapClaims{}, c.keyFunc)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (c *TokenCodec) decode(token string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := c.parser.ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

func (c *TokenCodec) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return c.secret, nil
}
