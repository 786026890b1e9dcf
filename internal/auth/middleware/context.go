package auth

import "context"

type ctxKey string

const (
	ctxKeySub  ctxKey = "sub"
	ctxKeyName ctxKey = "name"
)

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeySub).(string)
	return s
}

func WithName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ctxKeyName, name)
}

// NameFromContext returns the display name from the token, or the subject
// when the token carried none.
func NameFromContext(ctx context.Context) string {
	if s, _ := ctx.Value(ctxKeyName).(string); s != "" {
		return s
	}
	return SubjectFromContext(ctx)
}
