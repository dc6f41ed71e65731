package testutil

import (
	"net/http"
	"time"

	id "lifeline/pkg/domain"
	"lifeline/pkg/requestcontext"
)

// AsPrincipal attaches an authenticated account and role to the request, the
// same way the auth middleware does.
func AsPrincipal(req *http.Request, userID id.UserID, role id.Role) *http.Request {
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), userID, role))
}

// AsDonor is AsPrincipal with RoleDonor.
func AsDonor(req *http.Request, userID id.UserID) *http.Request {
	return AsPrincipal(req, userID, id.RoleDonor)
}

// AsAdmin is AsPrincipal with RoleAdmin.
func AsAdmin(req *http.Request, userID id.UserID) *http.Request {
	return AsPrincipal(req, userID, id.RoleAdmin)
}

// AtTime pins the request-scoped clock.
func AtTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
