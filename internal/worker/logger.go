package worker

import (
	"context"

	"gift_autobuy/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

func contextWithAttrs(ctx context.Context, args ...any) context.Context {
	return contextx.WithLogger(ctx, logger(ctx).With(args...))
}
