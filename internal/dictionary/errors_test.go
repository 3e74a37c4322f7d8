package dictionary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNetworkError(t *testing.T) {
	tests := []struct {
		name         string
		err          *NetworkError
		wantContains string
	}{
		{
			name:         "status code",
			err:          &NetworkError{Word: "cat", StatusCode: 503},
			wantContains: "status code: 503",
		},
		{
			name:         "transport error",
			err:          &NetworkError{Word: "cat", Err: context.DeadlineExceeded},
			wantContains: "deadline exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.err.Error(), tt.wantContains)
			wrapped := fmt.Errorf("remote.Lookup > %w", tt.err)
			assert.True(t, IsNetworkError(wrapped))
		})
	}

	assert.ErrorIs(t, &NetworkError{Word: "cat", Err: context.DeadlineExceeded}, context.DeadlineExceeded)
	assert.False(t, IsNetworkError(errors.New("boom")))
}

func TestIOError_Unwrap(t *testing.T) {
	err := fmt.Errorf("store.Load > %w", &IOError{Op: "open", Path: "/tmp/x", Err: os.ErrPermission})
	assert.ErrorIs(t, err, os.ErrPermission)

	var ioErr *IOError
	assert.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "open", ioErr.Op)
}

func TestDecodeError_Unwrap(t *testing.T) {
	cause := errors.New("snappy: corrupt input")
	err := &DecodeError{Path: "/tmp/x", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "/tmp/x")
}
