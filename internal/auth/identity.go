package auth

import (
	"context"
	"slices"

	"github.com/gofiber/fiber/v2"
)

// RoleUser is granted to every principal authenticated by a bearer token.
const RoleUser = "USER"

const identityKey = "auth_identity"

type identityContextKey struct{}

// Identity is the authenticated caller attached to a single request.
type Identity struct {
	Principal string   `json:"principal"`
	Roles     []string `json:"roles"`
}

func newUserIdentity(principal string) *Identity {
	return &Identity{Principal: principal, Roles: []string{RoleUser}}
}

// HasRole reports whether the identity carries role.
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	return slices.Contains(i.Roles, role)
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext retrieves the identity attached to ctx, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	id, ok := ctx.Value(identityContextKey{}).(*Identity)
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}

// IdentityFromFiber retrieves the identity attached to the request.
func IdentityFromFiber(c *fiber.Ctx) (*Identity, bool) {
	if id, ok := c.Locals(identityKey).(*Identity); ok && id != nil {
		return id, true
	}
	return IdentityFromContext(c.UserContext())
}

// AttachIdentity stores id on the request for downstream handlers.
func AttachIdentity(c *fiber.Ctx, id *Identity) {
	c.Locals(identityKey, id)
	c.SetUserContext(WithIdentity(c.UserContext(), id))
}

// restoreIdentity puts back the identity state captured before a failed attempt.
func restoreIdentity(c *fiber.Ctx, prev *Identity, prevCtx context.Context) {
	c.Locals(identityKey, prev)
	c.SetUserContext(prevCtx)
}
