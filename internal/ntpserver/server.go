// Package ntpserver implements a minimal stateless NTP responder. Each
// client query is answered with a stratum-1 response derived from the
// server clock; nothing is tracked between datagrams.
package ntpserver

import (
	"context"
	"errors"
	"log"
	"net"
	"time"

	"github.com/frechilla/udptools/pkg/ntp"
)

// readBuffer leaves room for extension fields past the fixed frame.
const readBuffer = 4096

type Config struct {
	Addr string           // IP:PORT to bind
	Now  func() time.Time // clock; nil means time.Now
}

// Server answers one datagram at a time: receive, decode, respond.
type Server struct {
	ctx  context.Context
	cfg  Config
	now  func() time.Time
	conn *net.UDPConn
}

func New(ctx context.Context, cfg Config) *Server {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Server{ctx: ctx, cfg: cfg, now: now}
}

// Listen binds the server socket.
func (s *Server) Listen() error {
	uaddr, err := net.ResolveUDPAddr("udp4", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.conn, err = net.ListenUDP("udp4", uaddr)
	if err != nil {
		return err
	}
	log.Printf("listening on %v", s.conn.LocalAddr())
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

// Serve replies to queries until the context is done. Malformed
// datagrams are logged and dropped.
func (s *Server) Serve() error {
	buf := make([]byte, readBuffer)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		log.Printf("received %d bytes from %v", n, addr)

		request, err := ntp.Decode(buf[:n])
		if err != nil {
			log.Printf("dropping datagram from %v: %v", addr, err)
			continue
		}

		response := ntp.NewResponse(request, s.now())
		sent, err := s.conn.WriteToUDP(response.Encode(), addr)
		if err != nil {
			log.Printf("send to %v: %v", addr, err)
			continue
		}
		log.Printf("sent %d bytes back to %v", sent, addr)
	}
}

// ListenAndServe runs the responder until ctx is done.
func ListenAndServe(ctx context.Context, cfg Config) error {
	s := New(ctx, cfg)
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}
