package auth

import (
	"context"

	"github.com/google/uuid"
)

type operatorKey struct{}

// ContextWithOperator stores the authenticated operator on the request context.
func ContextWithOperator(ctx context.Context, operator Claims) context.Context {
	return context.WithValue(ctx, operatorKey{}, operator)
}

func OperatorFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(operatorKey{}).(Claims)
	return c, ok
}

func OperatorIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	c, ok := OperatorFromContext(ctx)
	return c.OperatorID, ok
}
