package v1

import "github.com/yomu-app/yomu/util"

var authenticationAllowlist = map[string]bool{
	"/api/v1/signup": true,
	"/api/v1/signin": true,
}

// Public catalog routes. A valid token is still honored so view
// tracking can attribute the request.
var publicPathPrefixes = []string{
	"/api/v1/manga",
	"/api/v1/chapter/",
	"/api/v1/genres",
	"/api/v1/covers/",
}

// isUnauthorizeAllowed returns whether the path is exempted from authentication.
func isUnauthorizeAllowed(fullMethodName string) bool {
	if authenticationAllowlist[fullMethodName] {
		return true
	}
	return util.HasPrefixes(fullMethodName, publicPathPrefixes...)
}

var allowedPathOnlyForAdminPrefixes = []string{
	"/api/v1/admin/",
	"/api/v1/user",
	"/api/v1/users",
	"/api/v1/settings/",
}

// isOnlyForAdminAllowedPath returns true if the path is allowed to be called only by admin.
func isOnlyForAdminAllowedPath(methodName string) bool {
	return util.HasPrefixes(methodName, allowedPathOnlyForAdminPrefixes...)
}
