// Package transport is the server shell: it binds the UDP endpoint,
// spawns the worker pool, and wires the optional ACL/rate-limit/metrics
// gates in front of the handler. None of this is part of the query
// handler's contract — the handler only needs "deliver a datagram and its
// source" and "send a buffer of length N back to that source" — but a
// concrete server needs exactly this shape to run.
package transport

import (
	"net"

	"github.com/dnsscience/authdns/internal/acl"
	"github.com/dnsscience/authdns/internal/eventbus"
	"github.com/dnsscience/authdns/internal/message"
	"github.com/dnsscience/authdns/internal/query"
	"github.com/dnsscience/authdns/internal/ratelimit"
	"github.com/dnsscience/authdns/internal/record"
	"github.com/dnsscience/authdns/internal/worker"
)

// DefaultAddr is the default bind address.
const DefaultAddr = "127.53.53.53:53"

// DefaultWorkers is the default worker count.
const DefaultWorkers = 8

// recvBufferSize is the per-worker scratch buffer size: large enough for
// the largest possible UDP DNS datagram.
const recvBufferSize = 65535

// Options configures an optional UDP server shell. The zero value runs
// with no ACL, no rate limiting, and no event publication.
type Options struct {
	Addr    string
	Workers int
	Config  *record.Config
	ACL     *acl.List
	Limiter *ratelimit.Limiter
	Bus     *eventbus.Bus
}

// Server is a bound UDP endpoint answering out of an immutable Config.
type Server struct {
	conn  *net.UDPConn
	opts  Options
	stats worker.Stats
	group *worker.Group
}

// Listen binds opts.Addr (or DefaultAddr) and returns a Server ready for
// Serve. Binding is the only fallible step; once it succeeds the server
// never fails again short of the socket itself erroring.
func Listen(opts Options) (*Server, error) {
	addr := opts.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	if opts.Workers == 0 {
		opts.Workers = DefaultWorkers
	}

	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}

	return &Server{conn: conn, opts: opts}, nil
}

// Serve spawns opts.Workers goroutines, each running the blocking
// receive/handle/send loop, and blocks until every worker's receive fails
// (normally because Close closed the socket out from under it).
func (s *Server) Serve() {
	s.group = worker.Start(s.opts.Workers, s.workerLoop)
	s.group.Wait()
}

// Close closes the listening socket, which unblocks every worker's
// pending receive and causes Serve to return once they've all exited.
func (s *Server) Close() error {
	return s.conn.Close()
}

// Stats returns a snapshot of the aggregate request counters.
func (s *Server) Stats() worker.Snapshot {
	return s.stats.Snapshot()
}

func (s *Server) workerLoop(workerID int) {
	buf := make([]byte, recvBufferSize)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}

		s.stats.Queries.Add(1)

		if !s.admit(addr.IP) {
			continue
		}

		replySize := query.Handle(buf, n, s.opts.Config)

		s.publish(buf)
		s.updateStats(buf)

		if _, err := s.conn.WriteToUDP(buf[:replySize], addr); err != nil {
			s.stats.Errors.Add(1)
		}
	}
}

// admit applies the optional ACL and rate limiter ahead of the handler.
// Both are consulted before any bytes are parsed.
func (s *Server) admit(ip net.IP) bool {
	if s.opts.ACL != nil && !s.opts.ACL.Permit(ip) {
		return false
	}
	if s.opts.Limiter != nil && !s.opts.Limiter.Allow(ip) {
		return false
	}
	return true
}

func (s *Server) updateStats(buf []byte) {
	switch buf[3] & 0x0F {
	case message.RCodeNoError:
		s.stats.Answers.Add(1)
	case message.RCodeNXDomain:
		s.stats.NXDomains.Add(1)
	case message.RCodeRefused:
		// out-of-zone query, not an operational error
	default:
		s.stats.Errors.Add(1)
	}
}

func (s *Server) publish(buf []byte) {
	if s.opts.Bus == nil {
		return
	}
	s.opts.Bus.Publish(eventbus.TopicQuery, eventbus.QueryEvent{Rcode: buf[3] & 0x0F})
}
