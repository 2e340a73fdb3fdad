// Package gen sends UDP packets random in content and size to an
// IP:PORT destination, either through a connected socket or through a
// raw socket with hand-built IP/UDP headers.
package gen

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net"
	"strconv"
	"time"

	"github.com/frechilla/udptools/pkg/packet"
)

const (
	DefaultMTU     = 1500
	DefaultMaxSize = 65535

	headerOverhead = packet.IP4HeaderLength + packet.UDPHeaderLength
)

var ErrInvalidSize = errors.New("gen: invalid size")

type Config struct {
	Host    string // destination dotted-quad address
	Port    int    // destination port
	SrcPort int    // raw mode source port; 0 means the destination port

	Raw     bool // build IP/UDP headers and send on a raw socket
	MTU     int  // raw mode packet bound
	MaxSize int  // plain mode packet bound

	Interval time.Duration // gap between packets
	Count    int           // packets to send; 0 means until interrupted
	Verbose  bool
}

// Validate applies the boundary checks once so the send loops work on
// trusted values.
func (cfg *Config) Validate() error {
	if _, err := packet.ParseAddr(cfg.Host); err != nil {
		return err
	}
	if cfg.Port <= 0 || cfg.Port > 0xffff {
		return fmt.Errorf("%w: destination port %d", packet.ErrInvalidPort, cfg.Port)
	}
	if cfg.SrcPort < 0 || cfg.SrcPort > 0xffff {
		return fmt.Errorf("%w: source port %d", packet.ErrInvalidPort, cfg.SrcPort)
	}
	if cfg.Raw {
		if cfg.MTU <= headerOverhead || cfg.MTU > 0xffff {
			return fmt.Errorf("%w: mtu %d", ErrInvalidSize, cfg.MTU)
		}
	} else {
		if cfg.MaxSize <= headerOverhead || cfg.MaxSize > 0xffff {
			return fmt.Errorf("%w: max size %d", ErrInvalidSize, cfg.MaxSize)
		}
	}
	return nil
}

// Run generates traffic until ctx is done or Count packets have been
// sent.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	var err error
	if cfg.Raw {
		err = runRaw(ctx, cfg)
	} else {
		err = runPlain(ctx, cfg)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runPlain(ctx context.Context, cfg Config) error {
	conn, err := net.Dial("udp4", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	if err != nil {
		return err
	}
	defer conn.Close()

	if cfg.Verbose {
		log.Printf("plain socket, maximum length of random packets set to %d", cfg.MaxSize)
	}

	return sendLoop(ctx, cfg, cfg.MaxSize-headerOverhead, func(payload []byte) error {
		_, err := conn.Write(payload)
		return err
	})
}

// sendLoop drives one run: pick a random size, fill the payload,
// hand it to send, pace, repeat.
func sendLoop(ctx context.Context, cfg Config, maxPayload int, send func(payload []byte) error) error {
	buf := make([]byte, maxPayload)
	for sent := 1; cfg.Count == 0 || sent <= cfg.Count; sent++ {
		n := 1 + rand.Intn(maxPayload)
		if _, err := crand.Read(buf[:n]); err != nil {
			return err
		}

		if err := send(buf[:n]); err != nil {
			log.Printf("%d: send of %d bytes to %s:%d failed: %v", sent, n, cfg.Host, cfg.Port, err)
		} else if cfg.Verbose {
			log.Printf("%d: sent %d bytes of data to %s:%d", sent, n, cfg.Host, cfg.Port)
		}

		if err := pace(ctx, cfg.Interval); err != nil {
			return err
		}
	}
	return nil
}

func pace(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
