package user

import "context"

type claimsKey struct{}

// WithClaims stores the caller identity on ctx.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the identity stored by WithClaims.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(Claims)
	return c, ok
}

// IsReviewer reports whether the role sees every employee's records.
func (c Claims) IsReviewer() bool {
	return c.Role == RoleManager || c.Role == RolePayroll || c.Role == RoleAdmin
}

// OwnEmployeeID returns the employee the caller acts as, or "" when the account has none.
func (c Claims) OwnEmployeeID() string {
	if c.EmployeeID == nil {
		return ""
	}
	return *c.EmployeeID
}
