// Package pagination implements keyset paging over descending surrogate ids.
// Cursors are opaque to clients.
package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100

	cursorPrefix = "id:"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Params is what list endpoints accept: ?limit and ?cursor.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor marks the last id of the previous page.
type Cursor struct {
	ID int64
}

// NormalizeLimit clamps limit into (0, MaxLimit], defaulting to DefaultLimit.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// LimitWithBuffer is the row count to fetch: one extra reveals a next page.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

func EncodeCursor(c Cursor) string {
	return base64.RawURLEncoding.EncodeToString(strconv.AppendInt([]byte(cursorPrefix), c.ID, 10))
}

// ParseCursor returns nil, nil for a blank value, meaning the first page.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: not base64url", ErrInvalidCursor)
	}
	digits, ok := strings.CutPrefix(string(raw), cursorPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: unknown format", ErrInvalidCursor)
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: id %q", ErrInvalidCursor, digits)
	}
	return &Cursor{ID: id}, nil
}

// Page trims a result fetched with LimitWithBuffer down to limit rows and
// returns the cursor for the next page, or "" on the last one. The returned
// slice is never nil.
func Page[T any](rows []T, limit int, idOf func(T) int64) ([]T, string) {
	limit = NormalizeLimit(limit)
	if len(rows) <= limit {
		if rows == nil {
			rows = []T{}
		}
		return rows, ""
	}
	rows = rows[:limit]
	return rows, EncodeCursor(Cursor{ID: idOf(rows[limit-1])})
}
