// Package sink implements a UDP datagram sink: it binds a port and
// logs the size and origin of everything that arrives. Logs are sent
// to the standard log package.
package sink

import (
	"context"
	"errors"
	"log"
	"net"

	"golang.org/x/net/ipv4"
)

// MaxDatagram is the largest UDP payload that fits an IPv4 packet.
const MaxDatagram = 65507

type Config struct {
	Addr string // IP:PORT to bind
}

// Server is the sink service. The server shuts down when the context
// passed to New is done.
type Server struct {
	ctx  context.Context
	cfg  Config
	conn *net.UDPConn
	pc   *ipv4.PacketConn
}

func New(ctx context.Context, cfg Config) *Server {
	return &Server{ctx: ctx, cfg: cfg}
}

// Listen binds the sink socket.
func (s *Server) Listen() error {
	uaddr, err := net.ResolveUDPAddr("udp4", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.conn, err = net.ListenUDP("udp4", uaddr)
	if err != nil {
		return err
	}
	s.pc = ipv4.NewPacketConn(s.conn)
	// TTL per datagram where the platform supports it. ReadFrom keeps
	// working with a nil control message where it doesn't.
	s.pc.SetControlMessage(ipv4.FlagTTL, true)
	log.Printf("listening on %v", s.conn.LocalAddr())
	// close the listener on shutdown in order to break out of the read loop
	go func() {
		<-s.ctx.Done()
		s.conn.Close()
	}()
	return nil
}

// LocalAddr returns the bound address. Listen must have succeeded.
func (s *Server) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// Serve logs received datagrams until the context is done.
func (s *Server) Serve() error {
	buf := make([]byte, MaxDatagram)
	for {
		n, cm, addr, err := s.pc.ReadFrom(buf)
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		if cm != nil && cm.TTL > 0 {
			log.Printf("received %d bytes of data from %v (ttl %d)", n, addr, cm.TTL)
		} else {
			log.Printf("received %d bytes of data from %v", n, addr)
		}
	}
}

// ListenAndServe runs the sink until ctx is done.
func ListenAndServe(ctx context.Context, cfg Config) error {
	s := New(ctx, cfg)
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}
