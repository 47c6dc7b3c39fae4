package http

import "net/http"

// HeaderUserID carries the authenticated caller's opaque user id, injected by
// the auth gateway in front of this service. The id is never interpreted
// beyond equality checks.
const HeaderUserID = "X-User-Id"

// CallerID extracts the authenticated user id from the request, or "" when
// the request is anonymous.
func CallerID(r *http.Request) string {
	return r.Header.Get(HeaderUserID)
}
