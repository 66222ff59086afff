package auth

import "context"

type ctxKey string

const subjectKey ctxKey = "userID"

// WithSubject returns a copy of ctx carrying the authenticated subject id.
func WithSubject(ctx context.Context, subjectID string) context.Context {
	return context.WithValue(ctx, subjectKey, subjectID)
}

// SubjectFromContext returns the subject id stored by WithSubject.
func SubjectFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectKey).(string)
	return v, ok && v != ""
}
