package rbac

import "context"

type subjectCtxKey struct{}

// WithSubject stores the authenticated subject in ctx.
func WithSubject(ctx context.Context, s Subject) context.Context {
	return context.WithValue(ctx, subjectCtxKey{}, s)
}

// SubjectFromContext returns the subject stored by WithSubject.
func SubjectFromContext(ctx context.Context) (Subject, bool) {
	s, ok := ctx.Value(subjectCtxKey{}).(Subject)
	return s, ok && s != nil
}
