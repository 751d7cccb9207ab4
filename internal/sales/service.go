package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
)

const dateLayout = "2006-01-02"

type Service interface {
	Daily(ctx context.Context, query Query) ([]DailySales, error)
}

// Query bounds the report by inclusive YYYY-MM-DD dates; blank is open.
type Query struct {
	From string
	To   string
}

type dailyReader interface {
	Daily(ctx context.Context, from, to time.Time) ([]DailySales, error)
}

type service struct {
	repo dailyReader
}

func NewService(repo dailyReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Daily(ctx context.Context, query Query) ([]DailySales, error) {
	from, err := parseDay("from", query.From)
	if err != nil {
		return nil, err
	}
	to, err := parseDay("to", query.To)
	if err != nil {
		return nil, err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "to must not be before from")
	}
	if !to.IsZero() {
		to = to.AddDate(0, 0, 1)
	}

	rows, err := s.repo.Daily(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sales")
	}
	if rows == nil {
		rows = []DailySales{}
	}
	return rows, nil
}

func parseDay(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	day, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be a YYYY-MM-DD date", field))
	}
	return day, nil
}
