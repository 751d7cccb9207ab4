package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
)

func paramError(msg, field string, extra map[string]any) error {
	details := map[string]any{"field": field}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}

// ParseQueryInt reads ?key as an int in [lo, hi], returning def when absent.
func ParseQueryInt(r *http.Request, key string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		return 0, paramError("query parameter must be an integer", key, nil)
	case n < lo || n > hi:
		return 0, paramError("query parameter out of range", key, map[string]any{"min": lo, "max": hi})
	}
	return n, nil
}

// ParseIDParam reads a positive int64 chi route parameter.
func ParseIDParam(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, paramError("id must be a positive integer", key, map[string]any{"value": raw})
	}
	return id, nil
}
