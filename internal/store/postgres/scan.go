package postgres

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"StravaFriendsDashboard/internal/domain"
)

const uniqueViolation = "23505"

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func timestamptzPtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	tt := t.Time
	return &tt
}

func uuidOrEmpty(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuidBytesToString(u.Bytes)
}

func uuidBytesToString(b [16]byte) string {
	var buf [36]byte
	hex.Encode(buf[0:8], b[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], b[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], b[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], b[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:36], b[10:16])
	return string(buf[:])
}

func isUniqueViolation(err error, constraint string) bool {
	var pgerr *pgconn.PgError
	return errors.As(err, &pgerr) && pgerr.Code == uniqueViolation && pgerr.ConstraintName == constraint
}

// storeErr tags a driver error so callers can classify it as ErrStore.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(domain.ErrStore, err))
}
