package testutil

import (
	"net/http"

	"landing/pkg/requestcontext"
)

// WithClient sets the client metadata the ClientMetadata middleware would
// normally extract.
func WithClient(req *http.Request, ip, userAgent string) *http.Request {
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, userAgent)
	return req.WithContext(ctx)
}
