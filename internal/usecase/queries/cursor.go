package queries

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"court-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	MaxListLimit     = 200
	DefaultListLimit = 20

	cursorPrefix = "v1:"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is the opaque continuation token handed to API clients.
type Cursor struct {
	After string `json:"after,omitempty"`
}

// keyset is the last row of a page in (created_at, id) order.
type keyset struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// encode keeps microseconds only, matching timestamptz, so the next page
// query neither skips nor repeats the boundary row.
func (k keyset) encode() *Cursor {
	raw := cursorPrefix + strconv.FormatInt(k.CreatedAt.UnixMicro(), 10) + "-" + k.ID.String()
	return &Cursor{After: base64.URLEncoding.EncodeToString([]byte(raw))}
}

func decodeKeyset(token string) (keyset, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return keyset{}, errs.Mark(errs.Wrap(err, "cursor is not base64url"), ErrInvalidCursor)
	}

	payload, ok := strings.CutPrefix(string(raw), cursorPrefix)
	if !ok {
		return keyset{}, errs.Mark(errs.New("unsupported cursor version"), ErrInvalidCursor)
	}

	micros, id, ok := strings.Cut(payload, "-")
	if !ok {
		return keyset{}, errs.Mark(errs.Newf("cursor %q is not <micros>-<uuid>", payload), ErrInvalidCursor)
	}

	ts, err := strconv.ParseInt(micros, 10, 64)
	if err != nil {
		return keyset{}, errs.Mark(errs.Wrap(err, "cursor timestamp"), ErrInvalidCursor)
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return keyset{}, errs.Mark(errs.Wrap(err, "cursor id"), ErrInvalidCursor)
	}

	return keyset{CreatedAt: time.UnixMicro(ts), ID: parsedID}, nil
}

func ValidateLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
