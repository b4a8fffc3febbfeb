package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/eventmarket/backend/pkg/apperr"
)

func TestClassify(t *testing.T) {
	require.NoError(t, Classify(nil, "offer"))

	err := Classify(fmt.Errorf("scan: %w", pgx.ErrNoRows), "offer")
	require.True(t, apperr.Is(err, apperr.NotFound))
	require.Equal(t, "offer not found", apperr.Message(err))

	err = Classify(&pgconn.PgError{Code: "23505"}, "invitation")
	require.True(t, apperr.Is(err, apperr.Conflict))
	require.True(t, IsUniqueViolation(err))

	plain := errors.New("timeout")
	require.Same(t, plain, Classify(plain, "offer"))
}
