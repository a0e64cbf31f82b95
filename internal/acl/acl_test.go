package acl

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAllow(t *testing.T) {
	l := New(true)

	assert.True(t, l.Permit(net.ParseIP("192.168.1.1")))
	assert.True(t, l.Permit(net.ParseIP("10.0.0.1")))

	require.NoError(t, l.Deny("10.0.0.0/8"))
	assert.False(t, l.Permit(net.ParseIP("10.0.0.1")))
	assert.True(t, l.Permit(net.ParseIP("192.168.1.1")))
}

func TestDefaultDeny(t *testing.T) {
	l := New(false)

	assert.False(t, l.Permit(net.ParseIP("192.168.1.1")))

	require.NoError(t, l.Allow("192.168.0.0/16"))
	assert.True(t, l.Permit(net.ParseIP("192.168.1.1")))
	assert.False(t, l.Permit(net.ParseIP("10.0.0.1")))
}

func TestDenyOverridesAllow(t *testing.T) {
	l := New(true)

	require.NoError(t, l.Allow("10.0.0.0/8"))
	require.NoError(t, l.Deny("10.0.1.0/24"))

	assert.True(t, l.Permit(net.ParseIP("10.0.2.1")))
	assert.False(t, l.Permit(net.ParseIP("10.0.1.1")))
}

func TestSingleIP(t *testing.T) {
	l := New(false)

	require.NoError(t, l.Allow("192.168.1.100"))
	assert.True(t, l.Permit(net.ParseIP("192.168.1.100")))
	assert.False(t, l.Permit(net.ParseIP("192.168.1.101")))
}

func TestIPv6(t *testing.T) {
	l := New(false)

	require.NoError(t, l.Allow("2001:db8::/32"))
	assert.True(t, l.Permit(net.ParseIP("2001:db8::1")))
	assert.False(t, l.Permit(net.ParseIP("2001:db9::1")))
}
