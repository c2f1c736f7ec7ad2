package game

import "context"

type playKey struct{}

// Play identifies one played game instance, from selection to back/restart.
type Play struct {
	PlayerID  int64
	Kind      Kind
	SessionID string
}

// WithPlay returns a context carrying p, so score sinks can attribute
// deltas to the game that produced them.
func WithPlay(ctx context.Context, p Play) context.Context {
	return context.WithValue(ctx, playKey{}, p)
}

// PlayFromContext returns the Play stored by WithPlay.
func PlayFromContext(ctx context.Context) (Play, bool) {
	p, ok := ctx.Value(playKey{}).(Play)
	return p, ok
}
