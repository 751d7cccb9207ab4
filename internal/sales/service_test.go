package sales

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/dbtest"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
)

func seedOrders(t *testing.T, repo *Repository) {
	t.Helper()
	orders := []models.Order{
		{Price: decimal.RequireFromString("10.25"), Date: time.Date(2026, 3, 13, 23, 10, 0, 0, time.UTC)},
		{Price: decimal.RequireFromString("8.00"), Date: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)},
		{Price: decimal.RequireFromString("4.50"), Date: time.Date(2026, 3, 14, 18, 45, 0, 0, time.UTC)},
		{Price: decimal.RequireFromString("6.00"), Date: time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)},
	}
	for i := range orders {
		require.NoError(t, repo.db.Create(&orders[i]).Error)
	}
}

func newTestService(t *testing.T) Service {
	t.Helper()
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	seedOrders(t, repo)
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc
}

func TestDailyGroupsByDay(t *testing.T) {
	svc := newTestService(t)

	rows, err := svc.Daily(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, "2026-03-13", rows[0].SalesDate)
	require.Equal(t, "2026-03-14", rows[1].SalesDate)
	require.True(t, rows[1].TotalSales.Equal(decimal.RequireFromString("12.50")), "got %s", rows[1].TotalSales)
	require.Equal(t, int64(2), rows[1].OrderCount)
	require.Equal(t, "2026-03-16", rows[2].SalesDate)
}

func TestDailyInclusiveRange(t *testing.T) {
	svc := newTestService(t)

	rows, err := svc.Daily(context.Background(), Query{From: "2026-03-14", To: "2026-03-14"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "2026-03-14", rows[0].SalesDate)

	rows, err = svc.Daily(context.Background(), Query{From: "2026-03-15"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "2026-03-16", rows[0].SalesDate)

	rows, err = svc.Daily(context.Background(), Query{From: "2027-01-01"})
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestDailyRejectsBadDates(t *testing.T) {
	svc := newTestService(t)
	for _, q := range []Query{
		{From: "14/03/2026"},
		{To: "2026-13-01"},
		{From: "2026-03-15", To: "2026-03-14"},
	} {
		_, err := svc.Daily(context.Background(), q)
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "query %+v got %v", q, err)
	}
}
