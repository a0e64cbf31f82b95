// Package acl is an optional source-IP allow/deny gate the transport can
// consult before handing a datagram to a worker. It is not part of the
// query handler's contract, since the handler never inspects client
// addresses, but the transport wires one in as an optional check ahead
// of the handler.
package acl

import (
	"net"
	"sync"
)

// List is an access control list evaluated deny-first, then allow, then a
// default policy.
type List struct {
	mu           sync.RWMutex
	allowed      []*net.IPNet
	denied       []*net.IPNet
	defaultAllow bool
}

// New returns a List with the given default policy and no explicit
// entries.
func New(defaultAllow bool) *List {
	return &List{defaultAllow: defaultAllow}
}

// Allow adds cidr (or a bare IP, treated as a /32 or /128) to the allow
// list.
func (l *List) Allow(cidr string) error {
	ipnet, err := parseNet(cidr)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowed = append(l.allowed, ipnet)
	return nil
}

// Deny adds cidr (or a bare IP) to the deny list.
func (l *List) Deny(cidr string) error {
	ipnet, err := parseNet(cidr)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.denied = append(l.denied, ipnet)
	return nil
}

// Permit reports whether ip should be allowed to query this server.
func (l *List) Permit(ip net.IP) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, n := range l.denied {
		if n.Contains(ip) {
			return false
		}
	}
	for _, n := range l.allowed {
		if n.Contains(ip) {
			return true
		}
	}
	return l.defaultAllow
}

func parseNet(cidr string) (*net.IPNet, error) {
	if _, ipnet, err := net.ParseCIDR(cidr); err == nil {
		return ipnet, nil
	}
	ip := net.ParseIP(cidr)
	if ip == nil {
		return nil, &net.ParseError{Type: "CIDR address or IP", Text: cidr}
	}
	if v4 := ip.To4(); v4 != nil {
		return &net.IPNet{IP: v4, Mask: net.CIDRMask(32, 32)}, nil
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}, nil
}
