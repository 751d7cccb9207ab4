package sales

import (
	"net/http"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/responses"
	internalsales "github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/sales"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

// Daily returns order totals per day. from and to are optional YYYY-MM-DD
// bounds, both inclusive.
func Daily(svc internalsales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}
		query := r.URL.Query()
		rows, err := svc.Daily(r.Context(), internalsales.Query{
			From: query.Get("from"),
			To:   query.Get("to"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
