package responses

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"net/http"

	"github.com/rs/zerolog/log"

	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/types"
)

// WriteJSON writes data as the whole body; the till reads bare objects and arrays.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

func WriteSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

func WriteMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, types.MessageResponse{Message: message})
}

// WriteError renders err through its code's metadata. Untyped errors become
// CodeInternal. Store and driver detail only ever reaches the log.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	body := types.APIError{Code: string(typed.Code()), Message: meta.PublicMessage}
	if meta.ExposeMessage && typed.Message() != "" {
		body.Message = typed.Message()
	}
	if meta.DetailsAllowed {
		body.Details = typed.Details()
	}

	logFailure(ctx, logg, err, meta.HTTPStatus)
	writeJSON(w, meta.HTTPStatus, body)
}

func logFailure(ctx context.Context, logg *logger.Logger, err error, status int) {
	if logg == nil {
		return
	}
	dump := pkgerrors.Dump(err)
	fields := map[string]any{
		"error":       dump.TopMessage,
		"error_code":  dump.Code,
		"error_chain": dump.Chain,
		"http_status": status,
	}
	maps.Copy(fields, dump.Postgres.Fields())

	ctx = logg.WithFields(ctx, fields)
	if status >= http.StatusInternalServerError {
		logg.Error(ctx, "request.error", err)
		return
	}
	logg.Warn(ctx, "request.rejected")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
