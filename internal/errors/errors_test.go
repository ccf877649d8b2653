package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := New(ErrCodeSnapshotWrite, "write snapshot", cause)

	assert.Equal(t, ErrCodeSnapshotWrite, err.Code)
	assert.Equal(t, CategoryIO, err.Category)
	assert.Contains(t, err.Error(), "ERR_201_SNAPSHOT_WRITE")
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestErrorIs_MatchesByCode(t *testing.T) {
	err := New(ErrCodeConfigInvalid, "bad weights", nil)

	assert.True(t, stderrors.Is(err, New(ErrCodeConfigInvalid, "", nil)))
	assert.False(t, stderrors.Is(err, New(ErrCodeConfigNotFound, "", nil)))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))

	wrapped := Wrap(ErrCodeSnapshotRead, fmt.Errorf("unexpected EOF"))
	require.NotNil(t, wrapped)
	assert.Equal(t, ErrCodeSnapshotRead, wrapped.Code)
	assert.Equal(t, "unexpected EOF", wrapped.Message)
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeInvalidInput, GetCode(New(ErrCodeInvalidInput, "empty id", nil)))
	assert.Equal(t, "", GetCode(fmt.Errorf("plain error")))
}

func TestCategoryFromCode(t *testing.T) {
	tests := []struct {
		code string
		want Category
	}{
		{ErrCodeConfigNotFound, CategoryConfig},
		{ErrCodeSnapshotVersion, CategoryIO},
		{ErrCodeDataDirUnusable, CategoryIO},
		{ErrCodeInvalidInput, CategoryValidation},
		{ErrCodeInternal, CategoryInternal},
		{"bad", CategoryInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(tt.code, "", nil).Category, tt.code)
	}
}
