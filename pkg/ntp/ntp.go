// Package ntp implements the fixed 48-byte NTP wire format used by the
// mock server: decoding client requests and building stratum-1
// responses from an injected clock.
package ntp

import "time"

type TimestampEncoded = uint64

type ShortEncoded = uint32

type Mode byte

const (
	RESERVED Mode = iota
	SYMMETRIC_ACTIVE
	SYMMETRIC_PASSIVE
	CLIENT
	SERVER
	BROADCAST_SERVER
	BROADCAST_CLIENT
	RESERVED_PRIVATE_USE
)

const (
	Port = "123" // NTP port number

	// PacketLength is the size of a packet without extension fields.
	PacketLength = 48
)

const VERSION byte = 4 // NTP version number

// Response header constants. The mock always answers as a stratum-1
// server with no root delay or dispersion.
const (
	ResponseStratum   byte = 1
	ResponsePoll      int8 = 3
	ResponsePrecision int8 = -23 // 0xe9, log2 seconds
)

// ReferenceID is the ASCII tag "GPGL" stamped on every response.
const ReferenceID ShortEncoded = 0x4750474c

// Packet is a decoded NTP frame. The first wire byte is split into
// Leap, Version and Mode; the remaining fields keep their wire
// encoding.
type Packet struct {
	Leap    byte
	Version byte
	Mode    Mode
	FieldsEncoded
}

type FieldsEncoded struct {
	Stratum   byte             /* stratum */
	Poll      int8             /* poll interval */
	Precision int8             /* precision */
	Rootdelay ShortEncoded     /* root delay */
	Rootdisp  ShortEncoded     /* root dispersion */
	Refid     ShortEncoded     /* reference ID */
	Reftime   TimestampEncoded /* reference time */
	Org       TimestampEncoded /* origin timestamp */
	Rec       TimestampEncoded /* receive timestamp */
	Xmt       TimestampEncoded /* transmit timestamp */
}

// NewResponse builds the server reply for req at instant now. Only the
// request's transmit timestamp is consulted: it is echoed back as the
// response's origin timestamp. The reference timestamp carries whole
// seconds only, matching the wire output of the original service.
func NewResponse(req *Packet, now time.Time) *Packet {
	secs, frac := Time(now)
	stamp := TimestampEncoded(secs)<<32 | TimestampEncoded(frac)
	return &Packet{
		Leap:    0,
		Version: VERSION,
		Mode:    SERVER,
		FieldsEncoded: FieldsEncoded{
			Stratum:   ResponseStratum,
			Poll:      ResponsePoll,
			Precision: ResponsePrecision,
			Rootdelay: 0,
			Rootdisp:  0,
			Refid:     ReferenceID,
			Reftime:   TimestampEncoded(secs) << 32,
			Org:       req.Xmt,
			Rec:       stamp,
			Xmt:       stamp,
		},
	}
}
