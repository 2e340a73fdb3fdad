package ntpserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frechilla/udptools/pkg/ntp"
)

func startServer(t *testing.T, now func() time.Time) *Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s := New(ctx, Config{Addr: "127.0.0.1:0", Now: now})
	require.NoError(t, s.Listen())
	go s.Serve()
	return s
}

func exchange(t *testing.T, addr net.Addr, request []byte) []byte {
	t.Helper()

	conn, err := net.Dial("udp4", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write(request)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	return buf[:n]
}

func TestServeAnswersQuery(t *testing.T) {
	now := time.Date(2014, time.May, 20, 10, 30, 0, 250_000_000, time.UTC)
	s := startServer(t, func() time.Time { return now })

	request := &ntp.Packet{Version: ntp.VERSION, Mode: ntp.CLIENT}
	request.Xmt = 0x00000000DEADBEEF

	response := exchange(t, s.LocalAddr(), request.Encode())
	require.Len(t, response, ntp.PacketLength)

	decoded, err := ntp.Decode(response)
	require.NoError(t, err)
	assert.Equal(t, ntp.SERVER, decoded.Mode)
	assert.Equal(t, ntp.ResponseStratum, decoded.Stratum)
	assert.Equal(t, ntp.TimestampEncoded(0x00000000DEADBEEF), decoded.Org)
	assert.Equal(t, ntp.Timestamp(now), decoded.Xmt)
}

func TestServeDropsShortDatagrams(t *testing.T) {
	now := time.Date(2014, time.May, 20, 10, 30, 0, 0, time.UTC)
	s := startServer(t, func() time.Time { return now })

	conn, err := net.Dial("udp4", s.LocalAddr().String())
	require.NoError(t, err)
	defer conn.Close()

	// too short to be an NTP frame; the server must stay silent
	_, err = conn.Write([]byte("hello"))
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, err = conn.Read(make([]byte, 64))
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())

	// and keep serving well-formed requests afterwards
	request := &ntp.Packet{Version: ntp.VERSION, Mode: ntp.CLIENT}
	response := exchange(t, s.LocalAddr(), request.Encode())
	assert.Len(t, response, ntp.PacketLength)
}
