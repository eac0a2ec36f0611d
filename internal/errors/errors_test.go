package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsConfigResolution(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "secret not found sentinel",
			err:  ErrSecretNotFound,
			want: true,
		},
		{
			name: "wrapped secret not found",
			err:  WrapSecretNotFound("default", "kc-db", errors.New("not found")),
			want: true,
		},
		{
			name: "secret key not found",
			err:  fmt.Errorf("%w: key %q", ErrSecretKeyNotFound, "password"),
			want: true,
		},
		{
			name: "invalid option",
			err:  fmt.Errorf("%w: %q", ErrOptionInvalid, "db-password"),
			want: true,
		},
		{
			name: "unrelated error",
			err:  errors.New("boom"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConfigResolution(tt.err))
		})
	}
}

func TestWrapTransientKubernetesAPI(t *testing.T) {
	base := errors.New("the server is currently unable to handle the request (rate limit)")

	wrapped := WrapTransientKubernetesAPI(base)
	assert.True(t, IsTransientKubernetesAPI(wrapped))

	// Already-transient errors are not double wrapped.
	assert.Equal(t, wrapped, WrapTransientKubernetesAPI(wrapped))

	assert.Nil(t, WrapTransientKubernetesAPI(nil))
}

func TestShouldRequeue(t *testing.T) {
	requeue, after := ShouldRequeue(nil)
	assert.False(t, requeue)
	assert.Equal(t, time.Duration(0), after)

	requeue, after = ShouldRequeue(WrapTransientKubernetesAPI(errors.New("too many requests")))
	assert.True(t, requeue)
	assert.Equal(t, 5*time.Second, after)

	requeue, after = ShouldRequeue(WrapSecretNotFound("default", "kc-db", errors.New("not found")))
	assert.True(t, requeue)
	assert.Equal(t, 1*time.Minute, after)

	requeue, after = ShouldRequeue(errors.New("boom"))
	assert.True(t, requeue)
	assert.Equal(t, time.Duration(0), after)
}
