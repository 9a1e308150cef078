package privacy

import (
	"context"
	"slices"

	"github.com/syssam/querykit/query"
)

// Viewer represents the authenticated user making a request.
// This interface should be implemented by application-specific user types.
type Viewer interface {
	// GetID returns the viewer's unique identifier.
	GetID() string
	// GetRoles returns the viewer's roles.
	GetRoles() []string
	// GetTenantID returns the viewer's tenant identifier for multi-tenancy.
	// Returns empty string if not applicable.
	GetTenantID() string
}

// viewerCtxKey is the context key for storing the viewer.
type viewerCtxKey struct{}

// WithViewer returns a new context with the viewer attached.
func WithViewer(ctx context.Context, viewer Viewer) context.Context {
	return context.WithValue(ctx, viewerCtxKey{}, viewer)
}

// ViewerFromContext retrieves the viewer from the context.
// Returns nil if no viewer is present.
func ViewerFromContext(ctx context.Context) Viewer {
	v, _ := ctx.Value(viewerCtxKey{}).(Viewer)
	return v
}

// SimpleViewer is a basic implementation of the Viewer interface.
type SimpleViewer struct {
	UserID   string
	Roles    []string
	TenantID string
}

// GetID returns the user ID.
func (v *SimpleViewer) GetID() string {
	return v.UserID
}

// GetRoles returns the user's roles.
func (v *SimpleViewer) GetRoles() []string {
	return v.Roles
}

// GetTenantID returns the tenant ID.
func (v *SimpleViewer) GetTenantID() string {
	return v.TenantID
}

// DenyIfNoViewer returns a rule that denies access if no viewer is present
// in the context. It is typically the first rule of a policy.
//
//	privacy.NewPolicy(
//	    privacy.DenyIfNoViewer[Todo](),
//	    privacy.HasRole[Todo]("admin"),
//	    privacy.OwnerFilter[Todo]("ownerId"),
//	)
func DenyIfNoViewer[T any]() Rule[T] {
	return ContextRule[T](func(ctx context.Context) error {
		if ViewerFromContext(ctx) == nil {
			return Denyf("querykit/privacy: viewer required")
		}
		return Skip
	})
}

// HasRole returns a rule that allows access if the viewer has the specified
// role, and skips otherwise.
func HasRole[T any](role string) Rule[T] {
	return HasAnyRole[T](role)
}

// HasAnyRole returns a rule that allows access if the viewer has any of the
// specified roles, and skips otherwise.
func HasAnyRole[T any](roles ...string) Rule[T] {
	return ContextRule[T](func(ctx context.Context) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		viewerRoles := viewer.GetRoles()
		for _, role := range roles {
			if slices.Contains(viewerRoles, role) {
				return Allow
			}
		}
		return Skip
	})
}

// OwnerFilter returns a rule narrowing operations to the records whose
// field equals the viewer's ID. It denies if no viewer is present.
func OwnerFilter[T any](field string) Rule[T] {
	return RuleFunc[T](func(ctx context.Context, _ Op) (query.Filter[T], error) {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return query.Filter[T]{}, Denyf("querykit/privacy: viewer required for owner-filtered operation")
		}
		return query.Where[T](field, query.Eq(viewer.GetID())), Skip
	})
}

// TenantFilter returns a rule narrowing operations to the records whose
// field equals the viewer's tenant. It denies if no viewer or tenant is
// present.
func TenantFilter[T any](field string) Rule[T] {
	return RuleFunc[T](func(ctx context.Context, _ Op) (query.Filter[T], error) {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return query.Filter[T]{}, Denyf("querykit/privacy: viewer required for tenant-filtered operation")
		}
		if viewer.GetTenantID() == "" {
			return query.Filter[T]{}, Denyf("querykit/privacy: tenant required")
		}
		return query.Where[T](field, query.Eq(viewer.GetTenantID())), Skip
	})
}
