// Package discovery finds out whether a custom status domain is served by
// Statuspage by following its CNAME records.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"
)

const (
	fallbackServer = "8.8.8.8:53"
	maxHops        = 8
)

// vendorDomains are the CNAME targets Statuspage asks custom domains to use.
var vendorDomains = []string{
	"stspg-customdomain.com.",
	"statuspage.io.",
}

// ErrNoCNAME is returned when the host has no CNAME record.
var ErrNoCNAME = errors.New("discovery: no CNAME record")

// Resolver queries one DNS server.
type Resolver struct {
	// IP:port format or blank to use system defined DNS
	Server string

	client *dns.Client
}

// NewResolver returns a Resolver for server, falling back to the first
// nameserver of /etc/resolv.conf and then to a public resolver.
func NewResolver(server string) *Resolver {
	if len(server) == 0 {
		config, err := dns.ClientConfigFromFile("/etc/resolv.conf")
		if err == nil && len(config.Servers) > 0 {
			server = net.JoinHostPort(config.Servers[0], config.Port)
		}
	}

	if len(server) == 0 {
		server = fallbackServer
	}

	return &Resolver{Server: server, client: new(dns.Client)}
}

// LookupCNAME follows the CNAME chain of host and returns every target in
// order, fully qualified.
func (r *Resolver) LookupCNAME(ctx context.Context, host string) ([]string, error) {
	name := dns.Fqdn(host)
	var chain []string

	for hop := 0; hop < maxHops; hop++ {
		m := new(dns.Msg)
		m.SetQuestion(name, dns.TypeCNAME)
		m.RecursionDesired = true

		resp, _, err := r.dnsClient().ExchangeContext(ctx, m, r.Server)
		if err != nil {
			return chain, fmt.Errorf("discovery: querying %s: %w", name, err)
		}
		if resp.Rcode != dns.RcodeSuccess {
			return chain, fmt.Errorf("discovery: querying %s: %s", name, dns.RcodeToString[resp.Rcode])
		}

		target := cnameTarget(resp.Answer, name)
		if target == "" {
			break
		}

		chain = append(chain, target)
		name = target
	}

	if len(chain) == 0 {
		return nil, ErrNoCNAME
	}

	return chain, nil
}

// IsHosted reports whether the CNAME chain of host ends up at Statuspage.
func (r *Resolver) IsHosted(ctx context.Context, host string) (bool, error) {
	chain, err := r.LookupCNAME(ctx, host)
	if errors.Is(err, ErrNoCNAME) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return Hosted(chain), nil
}

// Hosted reports whether any name in a CNAME chain is a Statuspage host.
func Hosted(chain []string) bool {
	for _, target := range chain {
		if IsVendorTarget(target) {
			return true
		}
	}
	return false
}

// IsVendorTarget reports whether target is a Statuspage host name.
func IsVendorTarget(target string) bool {
	target = strings.ToLower(dns.Fqdn(target))
	for _, domain := range vendorDomains {
		if target == domain || strings.HasSuffix(target, "."+domain) {
			return true
		}
	}
	return false
}

func (r *Resolver) dnsClient() *dns.Client {
	if r.client == nil {
		return new(dns.Client)
	}
	return r.client
}

func cnameTarget(answers []dns.RR, name string) string {
	for _, answer := range answers {
		cname, ok := answer.(*dns.CNAME)
		if !ok {
			continue
		}
		if strings.EqualFold(cname.Hdr.Name, name) {
			return cname.Target
		}
	}
	return ""
}
