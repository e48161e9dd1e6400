package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShatadruM/MonkeRivals/internal/protocol"
)

func TestRegister_NoAffiliation(t *testing.T) {
	g := New()
	out := make(chan protocol.ServerMessage, 1)
	c := g.Register("c1", out)

	assert.Nil(t, c.Ref)
	assert.Equal(t, 1, g.Len())

	got, ok := g.Get("c1")
	require.True(t, ok)
	assert.Same(t, c, got)
}

func TestAssociate_Dissociate(t *testing.T) {
	g := New()
	g.Register("c1", nil)

	g.Associate("c1", Ref{Kind: RefRoom, ID: "r1"})
	c, _ := g.Get("c1")
	require.NotNil(t, c.Ref)
	assert.Equal(t, RefRoom, c.Ref.Kind)
	assert.Equal(t, "r1", c.Ref.ID)

	acc := 92.0
	c.Accuracy = &acc

	g.Dissociate("c1")
	assert.Nil(t, c.Ref)
	// transient telemetry must not leak into the next race
	assert.Nil(t, c.Accuracy)

	// unknown ids are no-ops
	g.Associate("ghost", Ref{Kind: RefLobby, ID: "ABC"})
	g.Dissociate("ghost")
}

func TestOnDisconnect_ReturnsAffiliationOnce(t *testing.T) {
	g := New()
	g.Register("c1", nil)
	g.Associate("c1", Ref{Kind: RefLobby, ID: "KXT42P"})

	ref, ok := g.OnDisconnect("c1")
	require.True(t, ok)
	assert.Equal(t, RefLobby, ref.Kind)
	assert.Equal(t, "KXT42P", ref.ID)
	assert.Equal(t, 0, g.Len())

	// repeated or out-of-order invocation stays safe
	_, ok = g.OnDisconnect("c1")
	assert.False(t, ok)
}

func TestOnDisconnect_WithoutAffiliation(t *testing.T) {
	g := New()
	g.Register("c1", nil)

	_, ok := g.OnDisconnect("c1")
	assert.False(t, ok)
	assert.Equal(t, 0, g.Len())
}
