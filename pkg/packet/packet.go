// Package packet builds and parses the IPv4 and UDP headers that the
// raw-socket traffic generator puts in front of its payloads. Total
// length and checksum fields are left at zero for the kernel and the
// NIC to fill in.
package packet

import (
	"errors"
	"fmt"
	"net/netip"
)

const (
	IP4HeaderLength = 20
	UDPHeaderLength = 8

	// MaxPayload is the largest UDP payload that still fits the 16-bit
	// UDP length field together with the 8-byte header.
	MaxPayload = 0xffff - UDPHeaderLength
)

var (
	ErrInvalidAddress = errors.New("packet: invalid IPv4 address")
	ErrInvalidPort    = errors.New("packet: invalid port")
	ErrLargePayload   = errors.New("packet: payload too large")
	ErrShortPacket    = errors.New("packet: short packet")
)

const protoUDP = 17

// ipID is stamped on every outgoing header. The generator has always
// used the same identification value; changing it would alter the
// observable wire output.
const ipID = 0xbeef

// ParseAddr parses a dotted-quad IPv4 address into its four bytes.
func ParseAddr(s string) ([4]byte, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is4() {
		return [4]byte{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return addr.As4(), nil
}

// IP4Header is the fixed 20-byte IPv4 header of a raw UDP packet: no
// options, TTL 255, protocol UDP. A zero Src leaves source selection to
// the kernel.
type IP4Header struct {
	Src [4]byte
	Dst [4]byte
}

// NewIP4Header parses two dotted-quad addresses into a header.
func NewIP4Header(src, dst string) (IP4Header, error) {
	var h IP4Header
	var err error
	if h.Src, err = ParseAddr(src); err != nil {
		return IP4Header{}, err
	}
	if h.Dst, err = ParseAddr(dst); err != nil {
		return IP4Header{}, err
	}
	return h, nil
}

// Marshal returns the 20-byte network-order header.
func (h IP4Header) Marshal() []byte {
	buf := make([]byte, IP4HeaderLength)
	buf[0] = 0x45                  // IPv4, 5-word header
	buf[1] = 0                     // ToS
	put16(buf[2:4], 0)             // total length, kernel fills
	put16(buf[4:6], ipID)          // identification
	put16(buf[6:8], 0)             // flags + fragment offset
	buf[8] = 255                   // TTL
	buf[9] = protoUDP              // inner protocol
	put16(buf[10:12], 0)           // checksum, kernel fills
	copy(buf[12:16], h.Src[:])
	copy(buf[16:20], h.Dst[:])
	return buf
}

// ParseIP4Header decodes the address fields of a marshalled header.
func ParseIP4Header(b []byte) (IP4Header, error) {
	if len(b) < IP4HeaderLength {
		return IP4Header{}, fmt.Errorf("%w: %d bytes of IPv4 header", ErrShortPacket, len(b))
	}
	var h IP4Header
	copy(h.Src[:], b[12:16])
	copy(h.Dst[:], b[16:20])
	return h, nil
}

// UDPHeader carries the two ports of an 8-byte UDP header. The length
// field is derived from the payload at marshal time and the checksum is
// always zero (offload assumed).
type UDPHeader struct {
	SrcPort uint16
	DstPort uint16
}

// NewUDPHeader validates ports once at the boundary. The destination
// must be a nonzero uint16; a source of 0 means "same as destination".
func NewUDPHeader(srcPort, dstPort int) (UDPHeader, error) {
	if dstPort <= 0 || dstPort > 0xffff {
		return UDPHeader{}, fmt.Errorf("%w: destination port %d", ErrInvalidPort, dstPort)
	}
	if srcPort < 0 || srcPort > 0xffff {
		return UDPHeader{}, fmt.Errorf("%w: source port %d", ErrInvalidPort, srcPort)
	}
	if srcPort == 0 {
		srcPort = dstPort
	}
	return UDPHeader{SrcPort: uint16(srcPort), DstPort: uint16(dstPort)}, nil
}

// Marshal returns the 8-byte header for a payload of payloadLen bytes.
// The length field counts the header itself.
func (h UDPHeader) Marshal(payloadLen int) ([]byte, error) {
	if payloadLen < 0 || payloadLen > MaxPayload {
		return nil, fmt.Errorf("%w: %d payload bytes", ErrLargePayload, payloadLen)
	}
	buf := make([]byte, UDPHeaderLength)
	put16(buf[0:2], h.SrcPort)
	put16(buf[2:4], h.DstPort)
	put16(buf[4:6], uint16(UDPHeaderLength+payloadLen))
	put16(buf[6:8], 0) // blank checksum
	return buf, nil
}

// ParseUDPHeader decodes a marshalled header and returns it along with
// the value of its length field.
func ParseUDPHeader(b []byte) (UDPHeader, int, error) {
	if len(b) < UDPHeaderLength {
		return UDPHeader{}, 0, fmt.Errorf("%w: %d bytes of UDP header", ErrShortPacket, len(b))
	}
	h := UDPHeader{
		SrcPort: get16(b[0:2]),
		DstPort: get16(b[2:4]),
	}
	return h, int(get16(b[4:6])), nil
}

// Datagram concatenates IP header, UDP header and payload into one
// buffer ready for a raw-socket send.
func Datagram(ip IP4Header, udp UDPHeader, payload []byte) ([]byte, error) {
	uh, err := udp.Marshal(len(payload))
	if err != nil {
		return nil, err
	}
	b := make([]byte, 0, IP4HeaderLength+UDPHeaderLength+len(payload))
	b = append(b, ip.Marshal()...)
	b = append(b, uh...)
	b = append(b, payload...)
	return b, nil
}

func put16(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

func get16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}
