package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-udpchat/pkg/types"
)

func TestBuildParse_AllVariants(t *testing.T) {
	dir := types.Directory{
		"alice": {Name: "alice", IP: "127.0.0.1", Port: 6000, Online: true},
	}
	msgs := []Message{
		Register{},
		Deregister{},
		Kick{Target: "bob"},
		CreateGroup{Group: "g1"},
		ListGroups{},
		JoinGroup{Group: "g1"},
		ListMembers{Group: "g1"},
		LeaveGroup{Group: "g1"},
		SendGroup{Group: "g1", Text: "hello; world"},
		Ack{},
		Ack{Info: "created", HasInfo: true},
		RegAck{Result: types.ReplyRegistered},
		Table{Directory: dir},
		GroupMessage{Sender: "alice", Timestamp: "1700000000.000000001", Text: "a;b;c"},
		PrivateMessage{Text: "hi"},
	}

	for _, m := range msgs {
		t.Run(m.Type().String(), func(t *testing.T) {
			data, err := Marshal(5000, "server", m)
			require.NoError(t, err)

			e, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, m.Type(), e.Type)

			got, err := Parse(e)
			require.NoError(t, err)
			assert.Equal(t, m, got)
		})
	}
}

func TestParse_MissingPayload(t *testing.T) {
	for _, mt := range []types.MsgType{
		types.MsgKick, types.MsgCreateGroup, types.MsgJoinGroup, types.MsgListMembers,
		types.MsgLeaveGroup, types.MsgSendGroup, types.MsgRegAck, types.MsgTable,
		types.MsgGroupMessage, types.MsgPrivateMessage,
	} {
		_, err := Parse(New(1, "a", mt))
		assert.ErrorIs(t, err, ErrMalformedEnvelope, mt.String())
	}
}

func TestParse_GroupPayloads(t *testing.T) {
	_, err := Parse(WithPayload(1, "a", types.MsgSendGroup, "nogroup"))
	assert.ErrorIs(t, err, ErrMalformedEnvelope)

	_, err = Parse(WithPayload(1, "server", types.MsgGroupMessage, "alice;123"))
	assert.ErrorIs(t, err, ErrMalformedEnvelope)

	m, err := Parse(WithPayload(1, "server", types.MsgGroupMessage, "alice;123;x;y"))
	require.NoError(t, err)
	assert.Equal(t, GroupMessage{Sender: "alice", Timestamp: "123", Text: "x;y"}, m)

	_, err = Parse(WithPayload(1, "server", types.MsgTable, "{not json"))
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestAck_GroupKey(t *testing.T) {
	s, ts, ok := Ack{Info: "alice;1.5", HasInfo: true}.GroupKey()
	require.True(t, ok)
	assert.Equal(t, "alice", s)
	assert.Equal(t, "1.5", ts)

	_, _, ok = Ack{}.GroupKey()
	assert.False(t, ok)
	_, _, ok = Ack{Info: "created", HasInfo: true}.GroupKey()
	assert.False(t, ok)
}

func TestBuild_Nil(t *testing.T) {
	_, err := Build(1, "a", nil)
	assert.ErrorIs(t, err, ErrNilMessage)

	_, err = Build(1, "a", PrivateMessage{Text: "x\ny"})
	assert.ErrorIs(t, err, ErrInvalidField)
}
