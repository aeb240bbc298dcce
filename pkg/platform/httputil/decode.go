package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "accredis/pkg/domain-errors"
)

// maxBodyBytes caps JSON request bodies. Uploads use their own limit.
const maxBodyBytes = 1 << 20

// Validatable is implemented by request types that normalize and check
// themselves after decoding.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes the JSON body into a new T and runs Validate.
// On failure it writes the error response and returns false.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req := PT(new(T))

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		msg := "invalid JSON body"
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			msg = "request body is required"
		case errors.As(err, &tooLarge):
			msg = "request body too large"
		}
		logger.WarnContext(ctx, "failed to decode request",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, msg))
		return nil, false
	}

	if err := req.Validate(); err != nil {
		logger.InfoContext(ctx, "request validation failed",
			"request_id", requestID,
			"error", err,
		)
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			err = dErrors.New(dErrors.CodeValidation, dErrors.Message(err))
		}
		WriteError(w, err)
		return nil, false
	}
	return (*T)(req), true
}
