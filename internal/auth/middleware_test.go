package auth_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-auth/internal/auth"
)

type identityResponse struct {
	Authenticated bool     `json:"authenticated"`
	Principal     string   `json:"principal"`
	Roles         []string `json:"roles"`
	FromContext   string   `json:"fromContext"`
}

type harness struct {
	app       *fiber.App
	mu        sync.Mutex
	forwarded int
	header    *string
}

func newHarness(pre fiber.Handler, mw *auth.AuthMiddleware) *harness {
	h := &harness{app: fiber.New()}
	// Set the header on the parsed request so values like "Bearer " reach
	// the middleware byte for byte.
	h.app.Use(func(c *fiber.Ctx) error {
		if h.header != nil {
			c.Request().Header.Set(fiber.HeaderAuthorization, *h.header)
		}
		return c.Next()
	})
	if pre != nil {
		h.app.Use(pre)
	}
	h.app.Use(mw.Handle)
	h.app.Get("/", func(c *fiber.Ctx) error {
		h.mu.Lock()
		h.forwarded++
		h.mu.Unlock()

		id, ok := auth.IdentityFromFiber(c)
		if !ok {
			return c.JSON(identityResponse{})
		}
		resp := identityResponse{Authenticated: true, Principal: id.Principal, Roles: id.Roles}
		if ctxID, ok := auth.IdentityFromContext(c.UserContext()); ok {
			resp.FromContext = ctxID.Principal
		}
		return c.JSON(resp)
	})
	return h
}

func (h *harness) do(t *testing.T, header string, set bool) identityResponse {
	t.Helper()
	h.header = nil
	if set {
		h.header = &header
	}
	resp, err := h.app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out identityResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

type recordingVerifier struct {
	calls []string
}

func (r *recordingVerifier) IsValid(string) bool {
	r.calls = append(r.calls, "IsValid")
	return true
}

func (r *recordingVerifier) IsExpired(string) bool {
	r.calls = append(r.calls, "IsExpired")
	return false
}

func (r *recordingVerifier) Subject(string) (string, bool) {
	r.calls = append(r.calls, "Subject")
	return "recorded", true
}

type panickingVerifier struct{}

func (panickingVerifier) IsValid(string) bool           { return true }
func (panickingVerifier) IsExpired(string) bool         { return false }
func (panickingVerifier) Subject(string) (string, bool) { panic("corrupt payload") }

type recorder struct {
	outcomes []string
}

func (r *recorder) RecordAuth(outcome string) { r.outcomes = append(r.outcomes, outcome) }

func TestAuthMiddleware_Scenarios(t *testing.T) {
	codec := newCodec(testSecret, nil)
	valid, err := codec.Issue("alice", nil)
	require.NoError(t, err)
	foreign, err := newCodec("another-secret-that-is-also-32-bytes-long", nil).Issue("alice", nil)
	require.NoError(t, err)

	clock := &fakeClock{now: time.Now().Add(-time.Hour)}
	expired, err := newCodec(testSecret, clock).IssueWithValidity("alice", nil, time.Second)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"tenant": "acme",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	emptySubject, err := codec.Issue("", nil)
	require.NoError(t, err)

	cases := []struct {
		name    string
		header  string
		set     bool
		wantID  bool
		outcome string
	}{
		{name: "valid bearer token", header: "Bearer " + valid, set: true, wantID: true, outcome: auth.OutcomeAuthenticated},
		{name: "no header", set: false, outcome: auth.OutcomeNoCredential},
		{name: "basic scheme", header: "Basic xyz", set: true, outcome: auth.OutcomeNoCredential},
		{name: "lowercase bearer", header: "bearer " + valid, set: true, outcome: auth.OutcomeNoCredential},
		{name: "uppercase bearer", header: "BEARER " + valid, set: true, outcome: auth.OutcomeNoCredential},
		{name: "missing space", header: "Bearer" + valid, set: true, outcome: auth.OutcomeNoCredential},
		{name: "empty bearer", header: "Bearer ", set: true, outcome: auth.OutcomeInvalid},
		{name: "garbage token", header: "Bearer garbage", set: true, outcome: auth.OutcomeInvalid},
		{name: "different secret", header: "Bearer " + foreign, set: true, outcome: auth.OutcomeInvalid},
		{name: "expired token", header: "Bearer " + expired, set: true, outcome: auth.OutcomeExpired},
		{name: "signed token without sub", header: "Bearer " + noSubject, set: true, outcome: auth.OutcomeNoSubject},
		{name: "empty subject", header: "Bearer " + emptySubject, set: true, outcome: auth.OutcomeNoSubject},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			h := newHarness(nil, auth.NewAuthMiddleware(codec, true, zap.NewNop(), auth.WithOutcomeRecorder(rec)))

			out := h.do(t, tc.header, tc.set)

			assert.Equal(t, 1, h.forwarded)
			assert.Equal(t, []string{tc.outcome}, rec.outcomes)
			if !tc.wantID {
				assert.False(t, out.Authenticated)
				return
			}
			assert.True(t, out.Authenticated)
			assert.Equal(t, "alice", out.Principal)
			assert.Equal(t, []string{auth.RoleUser}, out.Roles)
			assert.Equal(t, "alice", out.FromContext)
		})
	}
}

func TestAuthMiddleware_SkipsVerifierWithoutBearer(t *testing.T) {
	v := &recordingVerifier{}
	h := newHarness(nil, auth.NewAuthMiddleware(v, true, nil))

	h.do(t, "Basic xyz", true)
	assert.Empty(t, v.calls)

	h.do(t, "Bearer anything", true)
	assert.Equal(t, []string{"IsValid", "IsExpired", "Subject"}, v.calls)
	assert.Equal(t, 2, h.forwarded)
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	v := &recordingVerifier{}
	rec := &recorder{}
	h := newHarness(nil, auth.NewAuthMiddleware(v, false, zap.NewNop(), auth.WithOutcomeRecorder(rec)))

	out := h.do(t, "Bearer anything", true)

	assert.False(t, out.Authenticated)
	assert.Empty(t, v.calls)
	assert.Equal(t, []string{auth.OutcomeDisabled}, rec.outcomes)
	assert.Equal(t, 1, h.forwarded)
}

func TestAuthMiddleware_DoesNotOverrideExistingIdentity(t *testing.T) {
	codec := newCodec(testSecret, nil)
	token, err := codec.Issue("alice", nil)
	require.NoError(t, err)

	first := func(c *fiber.Ctx) error {
		auth.AttachIdentity(c, &auth.Identity{Principal: "first", Roles: []string{"ADMIN"}})
		return c.Next()
	}
	rec := &recorder{}
	h := newHarness(first, auth.NewAuthMiddleware(codec, true, zap.NewNop(), auth.WithOutcomeRecorder(rec)))

	out := h.do(t, "Bearer "+token, true)

	assert.True(t, out.Authenticated)
	assert.Equal(t, "first", out.Principal)
	assert.Equal(t, []string{"ADMIN"}, out.Roles)
	assert.Equal(t, []string{auth.OutcomeAlreadySet}, rec.outcomes)
}

func TestAuthMiddleware_RecoversFromFault(t *testing.T) {
	t.Run("no prior identity", func(t *testing.T) {
		rec := &recorder{}
		h := newHarness(nil, auth.NewAuthMiddleware(panickingVerifier{}, true, zap.NewNop(), auth.WithOutcomeRecorder(rec)))

		out := h.do(t, "Bearer boom", true)

		assert.False(t, out.Authenticated)
		assert.Equal(t, 1, h.forwarded)
		assert.Equal(t, []string{auth.OutcomeFault}, rec.outcomes)
	})

	t.Run("prior identity survives", func(t *testing.T) {
		first := func(c *fiber.Ctx) error {
			auth.AttachIdentity(c, &auth.Identity{Principal: "first", Roles: []string{auth.RoleUser}})
			return c.Next()
		}
		h := newHarness(first, auth.NewAuthMiddleware(panickingVerifier{}, true, zap.NewNop()))

		out := h.do(t, "Bearer boom", true)

		assert.True(t, out.Authenticated)
		assert.Equal(t, "first", out.Principal)
		assert.Equal(t, 1, h.forwarded)
	})
}

func TestAuthMiddleware_ReturnsDownstreamError(t *testing.T) {
	app := fiber.New()
	app.Use(auth.NewAuthMiddleware(newCodec(testSecret, nil), true, zap.NewNop()).Handle)
	app.Get("/", func(*fiber.Ctx) error { return fiber.ErrTeapot })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestAuthMiddleware_ConcurrentRequestsAreIsolated(t *testing.T) {
	codec := newCodec(testSecret, nil)
	h := newHarness(nil, auth.NewAuthMiddleware(codec, true, zap.NewNop()))

	subjects := []string{"alice", "bob", "carol", "dave"}
	tokens := make([]string, len(subjects))
	for i, s := range subjects {
		tok, err := codec.Issue(s, nil)
		require.NoError(t, err)
		tokens[i] = tok
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			idx := i % len(subjects)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if i%5 != 0 {
				req.Header.Set("Authorization", "Bearer "+tokens[idx])
			}
			resp, err := h.app.Test(req, -1)
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()

			var out identityResponse
			if !assert.NoError(t, json.NewDecoder(resp.Body).Decode(&out)) {
				return
			}
			if i%5 == 0 {
				assert.False(t, out.Authenticated)
				return
			}
			assert.Equal(t, subjects[idx], out.Principal)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 40, h.forwarded)
}
