package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateClientName(t *testing.T) {
	assert.NoError(t, ValidateClientName("alice"))

	for _, bad := range []string{"", "server", "a;b", "a b", "a\nb"} {
		assert.ErrorIs(t, ValidateClientName(bad), ErrInvalidName, bad)
	}
}

func TestValidateGroupName(t *testing.T) {
	assert.NoError(t, ValidateGroupName("G"))
	// 群组可以叫 server
	assert.NoError(t, ValidateGroupName("server"))
	assert.ErrorIs(t, ValidateGroupName("x;y"), ErrInvalidName)
}

func TestJoinSplitNames(t *testing.T) {
	assert.Nil(t, SplitNames(""))
	assert.Equal(t, []string{"a", "b"}, SplitNames(JoinNames([]string{"a", "b"})))
}

func TestRegistrationError(t *testing.T) {
	assert.NoError(t, RegistrationError(ReplyRegistered))
	assert.ErrorIs(t, RegistrationError(ReplyNameTaken), ErrNameTaken)
	assert.ErrorIs(t, RegistrationError(ReplyAddressTaken), ErrAddressTaken)
	assert.ErrorIs(t, RegistrationError("?"), ErrUnexpectedReply)
}
