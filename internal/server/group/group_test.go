package group

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_Unique(t *testing.T) {
	g := New()
	require.NoError(t, g.Create("g1"))
	require.NoError(t, g.Join("g1", "alice"))

	assert.ErrorIs(t, g.Create("g1"), ErrGroupExists)

	// 重复创建不影响成员
	members, err := g.ListMembers("g1", "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, members)
}

func TestCreate_InvalidName(t *testing.T) {
	g := New()
	assert.ErrorIs(t, g.Create(""), ErrInvalidGroupName)
	assert.ErrorIs(t, g.Create("a;b"), ErrInvalidGroupName)
	assert.ErrorIs(t, g.Create("a b"), ErrInvalidGroupName)
	assert.Empty(t, g.List())
}

func TestList_Sorted(t *testing.T) {
	g := New()
	for _, n := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, g.Create(n))
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, g.List())
}

func TestJoin(t *testing.T) {
	g := New()
	assert.ErrorIs(t, g.Join("nope", "alice"), ErrGroupNotFound)

	require.NoError(t, g.Create("g1"))
	require.NoError(t, g.Join("g1", "alice"))
	require.NoError(t, g.Join("g1", "alice"))
	assert.True(t, g.IsMember("g1", "alice"))
	assert.Equal(t, map[string][]string{"g1": {"alice"}}, g.Snapshot())
}

func TestListMembers_RequiresMembership(t *testing.T) {
	g := New()
	require.NoError(t, g.Create("g1"))
	require.NoError(t, g.Join("g1", "bob"))
	require.NoError(t, g.Join("g1", "alice"))

	members, err := g.ListMembers("g1", "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, members)

	_, err = g.ListMembers("g1", "carol")
	assert.ErrorIs(t, err, ErrNotAMember)

	_, err = g.ListMembers("nope", "bob")
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestLeave(t *testing.T) {
	g := New()
	require.NoError(t, g.Create("g1"))
	require.NoError(t, g.Join("g1", "alice"))

	require.NoError(t, g.Leave("g1", "alice"))
	assert.ErrorIs(t, g.Leave("g1", "alice"), ErrNotAMember)
	assert.ErrorIs(t, g.Leave("nope", "alice"), ErrNotAMember)

	// 空群组仍然存在
	assert.Equal(t, []string{"g1"}, g.List())
}

func TestRecipients(t *testing.T) {
	g := New()
	require.NoError(t, g.Create("g1"))
	for _, m := range []string{"a", "b", "c"} {
		require.NoError(t, g.Join("g1", m))
	}

	r, err := g.Recipients("g1", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, r)

	_, err = g.Recipients("g1", "x")
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestEvict(t *testing.T) {
	g := New()
	require.NoError(t, g.Create("g1"))
	for _, m := range []string{"a", "b", "c"} {
		require.NoError(t, g.Join("g1", m))
	}
	require.NoError(t, g.Leave("g1", "c"))

	removed := g.Evict("g1", []string{"b", "c"})
	assert.Equal(t, []string{"b"}, removed)
	assert.False(t, g.IsMember("g1", "b"))
	assert.True(t, g.IsMember("g1", "a"))

	assert.Nil(t, g.Evict("nope", []string{"a"}))
}

func TestConcurrentMembership(t *testing.T) {
	g := New()
	require.NoError(t, g.Create("g1"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = g.Join("g1", "a")
			_, _ = g.Recipients("g1", "a")
		}()
		go func() {
			defer wg.Done()
			_ = g.Evict("g1", []string{"a"})
			_, _ = g.ListMembers("g1", "a")
		}()
	}
	wg.Wait()
}
