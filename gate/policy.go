package gate

import "context"

// Policy defines resource-level authorization rules for a resource type.
// U is the subject type (e.g., an actor struct or a bare user id).
// Implementations typically check ownership of the concrete resource.
type Policy[U any] interface {
	// Can returns true if the subject may perform action on resource.
	// For list/create, resource may be nil (context-only check).
	Can(ctx context.Context, subject U, action Action, resource any) bool
}

// PolicyFunc adapts an ordinary function to the Policy interface.
type PolicyFunc[U any] func(ctx context.Context, subject U, action Action, resource any) bool

func (f PolicyFunc[U]) Can(ctx context.Context, subject U, action Action, resource any) bool {
	return f(ctx, subject, action, resource)
}
