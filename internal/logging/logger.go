// Package logging is the structured-logging contract shared by every layer
// of the server and client. Code takes a Logger, never a concrete backend.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// key-value pairs:
//
//	log.Info(ctx, "push connection bound", "user_id", userID)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)

	// Warn reports unusual but non-fatal conditions, such as a dropped
	// push event or a failed counter read-back.
	Warn(ctx context.Context, msg string, args ...any)

	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always carries the given pairs,
	// typically a "module" tag.
	With(args ...any) Logger
}
