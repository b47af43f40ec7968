package dberr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "op and message",
			err:  &Error{Kind: NotFound, Op: "GetPage", Msg: "page 42 not resident"},
			want: "GetPage: page 42 not resident",
		},
		{
			name: "message only",
			err:  &Error{Kind: InvalidInput, Msg: "page size must be positive"},
			want: "page size must be positive",
		},
		{
			name: "wrapped cause, no message",
			err:  &Error{Kind: Internal, Op: "StorePage", Err: errors.New("disk full")},
			want: "StorePage: disk full",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIsHelpers(t *testing.T) {
	notFound := NotFoundf("GetPage", "page %d not resident", 42)
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsAlreadyExists(notFound))

	exists := AlreadyExistsf("RegisterDatabase", "database %q already registered", "orders")
	assert.True(t, IsAlreadyExists(exists))
	assert.False(t, IsNotFound(exists))

	noBackup := &Error{Kind: NoSuitableBackup, Op: "FindRecoveryPath", Msg: "no backup set covers target SCN"}
	assert.True(t, IsNoSuitableBackup(noBackup))
}

func TestErrorIsMatchesSentinelByKind(t *testing.T) {
	err := NotFoundf("GetPage", "page %d not resident", 7)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrAlreadyExists))
}

func TestWrapPreservesKind(t *testing.T) {
	inner := NotFoundf("lookup", "missing")
	wrapped := Wrap("RegisterBackupPiece", inner)

	var e *Error
	assert.True(t, errors.As(wrapped, &e))
	assert.Equal(t, NotFound, e.Kind)
	assert.Equal(t, "RegisterBackupPiece", e.Op)
}

func TestWrapClassifiesUnknownErrorsInternal(t *testing.T) {
	wrapped := Wrap("ImportCatalog", errors.New("unexpected EOF"))

	var e *Error
	assert.True(t, errors.As(wrapped, &e))
	assert.Equal(t, Internal, e.Kind)
}

func TestWrapNilIsNil(t *testing.T) {
	assert.Nil(t, Wrap("op", nil))
}
