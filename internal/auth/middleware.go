package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

// Authentication outcomes reported to an OutcomeRecorder.
const (
	OutcomeAuthenticated = "authenticated"
	OutcomeNoCredential  = "no_credential"
	OutcomeInvalid       = "invalid"
	OutcomeExpired       = "expired"
	OutcomeNoSubject     = "no_subject"
	OutcomeAlreadySet    = "already_set"
	OutcomeFault         = "fault"
	OutcomeDisabled      = "disabled"
)

// TokenVerifier is the subset of TokenCodec the middleware relies on.
type TokenVerifier interface {
	IsValid(token string) bool
	IsExpired(token string) bool
	Subject(token string) (string, bool)
}

// OutcomeRecorder receives one outcome per processed request.
type OutcomeRecorder interface {
	RecordAuth(outcome string)
}

// AuthMiddleware turns a bearer token into a request identity. It never
// rejects a request; callers that need authorization add a guard after it.
type AuthMiddleware struct {
	verifier TokenVerifier
	enabled  bool
	logger   *zap.Logger
	recorder OutcomeRecorder
}

// MiddlewareOption customizes an AuthMiddleware.
type MiddlewareOption func(*AuthMiddleware)

// WithOutcomeRecorder reports each authentication outcome to rec.
func WithOutcomeRecorder(rec OutcomeRecorder) MiddlewareOption {
	return func(m *AuthMiddleware) {
		m.recorder = rec
	}
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(verifier TokenVerifier, enabled bool, logger *zap.Logger, opts ...MiddlewareOption) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &AuthMiddleware{verifier: verifier, enabled: enabled, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle attaches an identity when the request carries a usable bearer token
// and always forwards to the next handler.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	outcome := OutcomeDisabled
	if m.enabled {
		outcome = m.authenticate(c)
	}
	if m.recorder != nil {
		m.recorder.RecordAuth(outcome)
	}
	return c.Next()
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (outcome string) {
	prev, _ := c.Locals(identityKey).(*Identity)
	prevCtx := c.UserContext()

	defer func() {
		if r := recover(); r != nil {
			restoreIdentity(c, prev, prevCtx)
			m.logger.Debug("bearer authentication failed", zap.Any("panic", r), zap.String("path", c.Path()))
			outcome = OutcomeFault
		}
	}()

	token, ok := bearerToken(c)
	if !ok {
		return OutcomeNoCredential
	}
	if !m.verifier.IsValid(token) {
		m.logger.Debug("invalid bearer token", zap.String("path", c.Path()))
		return OutcomeInvalid
	}
	if m.verifier.IsExpired(token) {
		m.logger.Debug("expired bearer token", zap.String("path", c.Path()))
		return OutcomeExpired
	}

	subject, ok := m.verifier.Subject(token)
	if !ok || subject == "" {
		return OutcomeNoSubject
	}
	if _, exists := IdentityFromFiber(c); exists {
		return OutcomeAlreadySet
	}

	AttachIdentity(c, newUserIdentity(subject))
	m.logger.Debug("bearer authentication succeeded", zap.String("principal", subject))
	return OutcomeAuthenticated
}

// bearerToken returns the credential after an exact-case "Bearer " prefix.
// The remainder may be empty.
func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	return strings.CutPrefix(header, bearerPrefix)
}
