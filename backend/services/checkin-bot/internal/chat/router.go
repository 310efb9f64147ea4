package chat

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// HandlerFunc handles one update.
type HandlerFunc func(ctx context.Context, u Update) error

// Middleware wraps a handler.
type Middleware func(HandlerFunc) HandlerFunc

// Router dispatches commands to registered handlers and everything else to the fallback.
type Router struct {
	commands map[string]HandlerFunc
	fallback HandlerFunc
	logger   *zap.Logger
}

// NewRouter returns router.
func NewRouter(logger *zap.Logger) *Router {
	return &Router{commands: make(map[string]HandlerFunc), logger: logger}
}

// Register attaches handler to a command name (without the leading slash).
func (r *Router) Register(command string, handler HandlerFunc, mws ...Middleware) {
	r.commands[strings.ToLower(command)] = Chain(handler, mws...)
}

// Fallback sets the handler for non-command updates.
func (r *Router) Fallback(handler HandlerFunc) {
	r.fallback = handler
}

// Route executes the handler for u. Unknown commands are dropped.
func (r *Router) Route(ctx context.Context, u Update) error {
	if u.IsCommand() {
		handler, ok := r.commands[strings.ToLower(u.Command)]
		if !ok {
			r.logger.Debug("unknown command ignored", zap.String("command", u.Command), zap.Int64("user_id", u.UserID))
			return nil
		}
		return handler(ctx, u)
	}
	if r.fallback == nil {
		return nil
	}
	return r.fallback(ctx, u)
}

// Chain applies middlewares so the first one runs outermost.
func Chain(handler HandlerFunc, mws ...Middleware) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}
