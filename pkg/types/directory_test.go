package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_EncodeDecode(t *testing.T) {
	d := Directory{
		"alice": {Name: "alice", IP: "127.0.0.1", Port: 5001, Online: true},
		"bob":   {Name: "bob", IP: "127.0.0.1", Port: 5002, Online: false},
	}

	payload, err := EncodeDirectory(d)
	require.NoError(t, err)
	assert.NotContains(t, payload, "\n")
	assert.Contains(t, payload, `"online":false`)

	decoded, err := DecodeDirectory(payload)
	require.NoError(t, err)
	assert.Equal(t, d, decoded)
}

func TestDirectory_DecodeInvalid(t *testing.T) {
	_, err := DecodeDirectory("{not json")
	assert.Error(t, err)
}

func TestDirectory_CloneIsIndependent(t *testing.T) {
	d := Directory{"alice": {Name: "alice", Online: true}}
	c := d.Clone()
	c["alice"] = ClientRecord{Name: "alice", Online: false}

	assert.True(t, d["alice"].Online)
	assert.Equal(t, 1, d.Online())
	assert.Equal(t, 0, c.Online())
}

func TestDirectory_Names(t *testing.T) {
	d := Directory{"b": {}, "a": {}, "c": {}}
	assert.Equal(t, []string{"a", "b", "c"}, d.Names())
}

func TestClientRecord_Addr(t *testing.T) {
	rec := ClientRecord{IP: "127.0.0.1", Port: 6000}
	addr := rec.Addr()
	assert.Equal(t, "127.0.0.1:6000", addr.String())
}
