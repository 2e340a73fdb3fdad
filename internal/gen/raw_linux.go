//go:build linux

package gen

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sys/unix"

	"github.com/frechilla/udptools/pkg/packet"
)

// runRaw sends each packet with hand-built IP and UDP headers through
// an IPPROTO_RAW socket. The source address is left at 0.0.0.0: the
// kernel fills it in along with the IP length and checksum fields.
func runRaw(ctx context.Context, cfg Config) error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_RAW, unix.IPPROTO_RAW)
	if err != nil {
		return fmt.Errorf("gen: raw socket (are you running as root?): %w", err)
	}
	defer unix.Close(fd)

	// cfg is validated; these cannot fail.
	dst, err := packet.ParseAddr(cfg.Host)
	if err != nil {
		return err
	}
	udpHeader, err := packet.NewUDPHeader(cfg.SrcPort, cfg.Port)
	if err != nil {
		return err
	}

	// The IP header is constant for the whole run.
	ipHeader := packet.IP4Header{Dst: dst}
	to := &unix.SockaddrInet4{Addr: dst}

	if cfg.Verbose {
		log.Printf("raw socket, mtu set to %d", cfg.MTU)
	}

	return sendLoop(ctx, cfg, cfg.MTU-headerOverhead, func(payload []byte) error {
		datagram, err := packet.Datagram(ipHeader, udpHeader, payload)
		if err != nil {
			return err
		}
		return unix.Sendto(fd, datagram, 0, to)
	})
}
