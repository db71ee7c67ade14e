package graph

import (
	"errors"
	"log/slog"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/metrics"
)

// internalError hides store and programming errors from clients. The
// original error is logged, the client only sees the code.
type internalError struct{}

func (internalError) Error() string { return "internal server error" }

func (internalError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": "INTERNAL"}
}

// resolverError prepares err for graphql-go.
//
// graphql-go only reads Extensions() from the exact value a resolver
// returns, not from wrapped errors, so the *apperror.AppError inside err is
// unwrapped and returned on its own. Anything else becomes internalError.
func (r *Resolver) resolverError(err error, field string) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		metrics.GraphQLErrorsTotal.WithLabelValues(appErr.Code()).Inc()
		return appErr
	}

	metrics.GraphQLErrorsTotal.WithLabelValues("INTERNAL").Inc()
	r.logger.Error("graphql resolver failed",
		slog.String("field", field),
		slog.String("error", err.Error()),
	)
	return internalError{}
}
