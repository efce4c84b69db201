package session

import "context"

type stateKey struct{}

// WithState stores the session state in ctx.
func WithState(ctx context.Context, state State) context.Context {
	return context.WithValue(ctx, stateKey{}, state)
}

// FromContext returns the state placed by Store.Middleware, or the zero State.
func FromContext(ctx context.Context) State {
	state, _ := ctx.Value(stateKey{}).(State)
	return state
}
