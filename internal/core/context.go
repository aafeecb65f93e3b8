package core

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/stockledger/internal/logging"
)

type contextKey string

const (
	ctxKeyIPAddress contextKey = "client_ip"
	ctxKeySource    contextKey = "source"
)

// ContextWithIPAddress records the client address for mutation logs.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// GetIPAddressFromContext extracts the client address.
func GetIPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}

// ContextWithSource records which frontend issued a mutation ("web", "cli").
func ContextWithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, ctxKeySource, source)
}

// GetSourceFromContext extracts the frontend name.
func GetSourceFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySource).(string); ok {
		return v
	}
	return ""
}

// opLogger returns the request logger tagged with the operation and any
// caller metadata carried by ctx.
func opLogger(ctx context.Context, op string) *slog.Logger {
	args := []any{"op", op}
	if src := GetSourceFromContext(ctx); src != "" {
		args = append(args, "source", src)
	}
	if ip := GetIPAddressFromContext(ctx); ip != "" {
		args = append(args, "client_ip", ip)
	}
	return logging.WithFields(ctx, args...)
}
