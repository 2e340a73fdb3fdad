package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIP4HeaderMarshal(t *testing.T) {
	h, err := NewIP4Header("10.0.0.1", "10.0.0.2")
	require.NoError(t, err)

	buf := h.Marshal()
	require.Len(t, buf, IP4HeaderLength)

	assert.Equal(t, byte(0x45), buf[0], "version + IHL")
	assert.Equal(t, byte(0), buf[1], "ToS")
	assert.Equal(t, []byte{0, 0}, buf[2:4], "total length left for the kernel")
	assert.Equal(t, []byte{0xbe, 0xef}, buf[4:6], "identification")
	assert.Equal(t, []byte{0, 0}, buf[6:8], "flags + fragment offset")
	assert.Equal(t, byte(255), buf[8], "TTL")
	assert.Equal(t, byte(17), buf[9], "protocol")
	assert.Equal(t, []byte{0, 0}, buf[10:12], "checksum left for the kernel")
	assert.Equal(t, []byte{10, 0, 0, 1}, buf[12:16], "source address")
	assert.Equal(t, []byte{10, 0, 0, 2}, buf[16:20], "destination address")
}

func TestParseAddrInvalid(t *testing.T) {
	for _, s := range []string{"", "10.0.0", "10.0.0.256", "example.com", "fe80::1", "::ffff:10.0.0.1"} {
		_, err := ParseAddr(s)
		assert.ErrorIs(t, err, ErrInvalidAddress, "address %q", s)
	}
}

func TestIP4HeaderRoundTrip(t *testing.T) {
	h, err := NewIP4Header("192.168.1.77", "8.8.4.4")
	require.NoError(t, err)

	parsed, err := ParseIP4Header(h.Marshal())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
}

func TestUDPHeaderLengthField(t *testing.T) {
	h, err := NewUDPHeader(1234, 5678)
	require.NoError(t, err)

	for _, payloadLen := range []int{0, 1, 100, 1472, MaxPayload} {
		buf, err := h.Marshal(payloadLen)
		require.NoError(t, err)
		require.Len(t, buf, UDPHeaderLength)

		want := uint16(payloadLen + UDPHeaderLength)
		assert.Equal(t, want, get16(buf[4:6]), "length field for %d payload bytes", payloadLen)
		assert.Equal(t, []byte{0, 0}, buf[6:8], "checksum stays zero")
	}

	_, err = h.Marshal(MaxPayload + 1)
	assert.ErrorIs(t, err, ErrLargePayload)
	_, err = h.Marshal(-1)
	assert.ErrorIs(t, err, ErrLargePayload)
}

func TestUDPHeaderDefaultSourcePort(t *testing.T) {
	h, err := NewUDPHeader(0, 53)
	require.NoError(t, err)

	buf, err := h.Marshal(100)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 53, 0, 53, 0, 108, 0, 0}, buf)
}

func TestUDPHeaderInvalidPorts(t *testing.T) {
	_, err := NewUDPHeader(0, 0)
	assert.ErrorIs(t, err, ErrInvalidPort)
	_, err = NewUDPHeader(0, -1)
	assert.ErrorIs(t, err, ErrInvalidPort)
	_, err = NewUDPHeader(0, 0x10000)
	assert.ErrorIs(t, err, ErrInvalidPort)
	_, err = NewUDPHeader(-1, 53)
	assert.ErrorIs(t, err, ErrInvalidPort)
	_, err = NewUDPHeader(0x10000, 53)
	assert.ErrorIs(t, err, ErrInvalidPort)
}

func TestUDPHeaderRoundTrip(t *testing.T) {
	h, err := NewUDPHeader(4000, 9999)
	require.NoError(t, err)

	buf, err := h.Marshal(512)
	require.NoError(t, err)

	parsed, length, err := ParseUDPHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
	assert.Equal(t, 512+UDPHeaderLength, length)
}

func TestParseShortBuffers(t *testing.T) {
	_, err := ParseIP4Header(make([]byte, IP4HeaderLength-1))
	assert.ErrorIs(t, err, ErrShortPacket)
	_, _, err = ParseUDPHeader(make([]byte, UDPHeaderLength-1))
	assert.ErrorIs(t, err, ErrShortPacket)
}

func TestDatagram(t *testing.T) {
	ip, err := NewIP4Header("0.0.0.0", "10.1.2.3")
	require.NoError(t, err)
	udp, err := NewUDPHeader(0, 7777)
	require.NoError(t, err)

	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	buf, err := Datagram(ip, udp, payload)
	require.NoError(t, err)

	require.Len(t, buf, IP4HeaderLength+UDPHeaderLength+len(payload))
	assert.Equal(t, ip.Marshal(), buf[:IP4HeaderLength])
	assert.Equal(t, payload, buf[IP4HeaderLength+UDPHeaderLength:])

	parsed, length, err := ParseUDPHeader(buf[IP4HeaderLength:])
	require.NoError(t, err)
	assert.Equal(t, uint16(7777), parsed.SrcPort, "source port defaults to destination")
	assert.Equal(t, uint16(7777), parsed.DstPort)
	assert.Equal(t, len(payload)+UDPHeaderLength, length)
}
