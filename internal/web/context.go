package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/stockledger/internal/core"
)

// WithRequestMetadata tags ctx with the client IP and the web source so
// service logs can tell frontends apart.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // already resolved by TrustedRealIP
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	ctx = core.ContextWithIPAddress(ctx, ip)
	return core.ContextWithSource(ctx, "web")
}
