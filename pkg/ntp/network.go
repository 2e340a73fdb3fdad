package ntp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformedPacket reports a datagram shorter than the fixed 48-byte
// frame.
var ErrMalformedPacket = errors.New("ntp: malformed packet")

// Encode serializes the packet into its 48-byte big-endian wire form.
func (packet *Packet) Encode() []byte {
	firstByte := (packet.Leap << 6) | (packet.Version << 3) | byte(packet.Mode)

	var buffer bytes.Buffer
	binary.Write(&buffer, binary.BigEndian, firstByte)
	binary.Write(&buffer, binary.BigEndian, &packet.FieldsEncoded)
	return buffer.Bytes()
}

// Decode parses the fixed fields of an NTP frame. Bytes past offset 48
// (extension fields) are ignored.
func Decode(encoded []byte) (*Packet, error) {
	if len(encoded) < PacketLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformedPacket, len(encoded))
	}

	reader := bytes.NewReader(encoded[:PacketLength])
	firstByte, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	fieldsEncoded := FieldsEncoded{}
	if err := binary.Read(reader, binary.BigEndian, &fieldsEncoded); err != nil {
		return nil, err
	}

	return &Packet{
		Leap:          firstByte >> 6,
		Version:       (firstByte >> 3) & 0b111,
		Mode:          Mode(firstByte & 0b111),
		FieldsEncoded: fieldsEncoded,
	}, nil
}
