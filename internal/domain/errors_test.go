package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"gift_autobuy/internal/domain"
	"gift_autobuy/pkg/errcodes"
)

func TestAppError(t *testing.T) {
	rq := require.New(t)

	cause := errors.New("connection reset")
	err := fmt.Errorf("store.Update: %w", domain.WrapError(cause, errcodes.StorageCorrupted, "failed to write"))

	rq.True(domain.IsAppError(err))
	rq.ErrorIs(err, cause)
	rq.ErrorContains(err, "failed to write: connection reset")

	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.StorageCorrupted, code)

	_, ok = domain.GetCode(cause)
	rq.False(ok)

	rq.True(domain.HasCode(err, errcodes.ProfileNotFound, errcodes.StorageCorrupted))
	rq.False(domain.HasCode(err, errcodes.ProfileNotFound))
	rq.False(domain.HasCode(cause, errcodes.StorageCorrupted))

	plain := domain.NewError(errcodes.ProfileNotFound, "profile not found")
	rq.Equal("profile not found", plain.Error())
	rq.Equal(errcodes.ProfileNotFound, plain.ErrorCode())
	rq.NoError(errors.Unwrap(plain))
}
