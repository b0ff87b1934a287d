package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnects(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestOpenReturnsClientWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client, err := Open(context.Background(), Options{
		Addr:         addr,
		DialTimeout:  50 * time.Millisecond,
		PingDeadline: 200 * time.Millisecond,
	})
	require.Error(t, err)
	require.NotNil(t, client)
	assert.Contains(t, err.Error(), addr)
	_ = client.Close()
}

func TestPingNilClient(t *testing.T) {
	require.Error(t, Ping(context.Background(), nil, time.Second))
}

func TestOptionDefaults(t *testing.T) {
	o := Options{Addr: "x"}.withDefaults()
	assert.Equal(t, 2*time.Second, o.DialTimeout)
	assert.Equal(t, time.Second, o.IOTimeout)
	assert.Equal(t, 5*time.Second, o.PingDeadline)
}
