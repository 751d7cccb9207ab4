package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// PostgresDetail is the server-side context of a failed statement, whichever
// driver surfaced it.
type PostgresDetail struct {
	Code       string `json:"pg_code"`
	Message    string `json:"pg_message,omitempty"`
	Detail     string `json:"pg_detail,omitempty"`
	Table      string `json:"pg_table,omitempty"`
	Column     string `json:"pg_column,omitempty"`
	Constraint string `json:"pg_constraint,omitempty"`
}

// Fields flattens the detail for a structured log line.
func (p *PostgresDetail) Fields() map[string]any {
	if p == nil {
		return nil
	}
	return map[string]any{
		"pg_code":       p.Code,
		"pg_message":    p.Message,
		"pg_detail":     p.Detail,
		"pg_table":      p.Table,
		"pg_column":     p.Column,
		"pg_constraint": p.Constraint,
	}
}

// ErrorDump is what the response writer logs for a failed request.
type ErrorDump struct {
	TopMessage string          `json:"top_message"`
	Code       Code            `json:"code,omitempty"`
	Retryable  bool            `json:"retryable,omitempty"`
	Chain      []string        `json:"chain,omitempty"`
	Postgres   *PostgresDetail `json:"postgres,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error(), Postgres: postgresDetail(err)}
	if typed := As(err); typed != nil {
		d.Code = typed.Code()
		d.Retryable = MetadataFor(typed.Code()).Retryable
	}
	for e := err; e != nil; e = stdErrors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	return d
}

func postgresDetail(err error) *PostgresDetail {
	var pgxErr *pgconn.PgError
	if stdErrors.As(err, &pgxErr) {
		return &PostgresDetail{
			Code:       pgxErr.Code,
			Message:    pgxErr.Message,
			Detail:     pgxErr.Detail,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Constraint: pgxErr.ConstraintName,
		}
	}
	var pqErr *pq.Error
	if stdErrors.As(err, &pqErr) {
		return &PostgresDetail{
			Code:       string(pqErr.Code),
			Message:    pqErr.Message,
			Detail:     pqErr.Detail,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Constraint: pqErr.Constraint,
		}
	}
	return nil
}
