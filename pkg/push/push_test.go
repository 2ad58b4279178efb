package push

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPermanent(t *testing.T) {
	assert.True(t, IsPermanent(ErrTokenInvalid))
	assert.True(t, IsPermanent(fmt.Errorf("%w: registration-token-not-registered", ErrTokenInvalid)))
	assert.False(t, IsPermanent(errors.New("deadline exceeded")))
	assert.False(t, IsPermanent(nil))
}

func TestClassify_TransientKeepsCause(t *testing.T) {
	cause := errors.New("503 service unavailable")
	err := classify(cause)

	assert.False(t, IsPermanent(err))
	assert.ErrorIs(t, err, cause)
}
