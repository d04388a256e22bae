package logging

import "context"

// Scope identifies the experiment position a log line belongs to, so that
// interleaved task/representation/trial output stays attributable.
type Scope struct {
	Task           string
	Representation string
	Trial          int
}

type scopeKeyType struct{}

var scopeKey scopeKeyType

// WithScope attaches an experiment scope to the context.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeKey, scope)
}

// GetScope retrieves the experiment scope from the context, if any.
func GetScope(ctx context.Context) (Scope, bool) {
	if ctx == nil {
		return Scope{}, false
	}
	scope, ok := ctx.Value(scopeKey).(Scope)
	return scope, ok
}
