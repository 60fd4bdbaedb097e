// Package mdns finds tuner hosts that advertise a register service on the
// local network.
package mdns

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/grandcat/zeroconf"
)

// DefaultService is the service type advertised by tuner hosts.
const DefaultService = "_dvbtune._tcp"

// Host is a discovered tuner host.
type Host struct {
	Instance  string // advertised name: "dvbtune on rack1"
	Hostname  string // DNS hostname: "rack1.local."
	Addresses []net.IP
	Port      int
	TXT       []string
}

// Addr is host:port on the first IPv4 address, falling back to the first
// address of any family and then the hostname.
func (h Host) Addr() string {
	host := strings.TrimSuffix(h.Hostname, ".")
	if len(h.Addresses) > 0 {
		host = h.Addresses[0].String()
	}
	for _, ip := range h.Addresses {
		if ip.To4() != nil {
			host = ip.String()
			break
		}
	}
	return net.JoinHostPort(host, strconv.Itoa(h.Port))
}

// TXTValue returns the value of a key=value TXT record.
func (h Host) TXTValue(key string) (string, bool) {
	for _, kv := range h.TXT {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k == key {
			return v, true
		}
	}
	return "", false
}

// DiscoverTuners browses for service until ctx expires and returns the
// deduplicated hosts sorted by instance name.
func DiscoverTuners(ctx context.Context, service string) ([]Host, error) {
	if service == "" {
		service = DefaultService
	}
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("resolver error: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	result := make(chan []Host, 1)
	go func() { result <- collect(ctx, entries) }()

	if err := resolver.Browse(ctx, service, "local.", entries); err != nil {
		return nil, fmt.Errorf("browse error: %w", err)
	}
	return <-result, nil
}

// collect drains entries until the channel closes or ctx ends.
func collect(ctx context.Context, entries <-chan *zeroconf.ServiceEntry) []Host {
	byKey := make(map[string]Host)
	for {
		select {
		case e, ok := <-entries:
			if !ok {
				return sortHosts(byKey)
			}
			if e == nil {
				continue
			}
			addrs := make([]net.IP, 0, len(e.AddrIPv4)+len(e.AddrIPv6))
			addrs = append(addrs, e.AddrIPv4...)
			addrs = append(addrs, e.AddrIPv6...)
			byKey[fmt.Sprintf("%s|%d", e.HostName, e.Port)] = Host{
				Instance:  cleanInstance(e.Instance),
				Hostname:  e.HostName,
				Addresses: addrs,
				Port:      e.Port,
				TXT:       append([]string{}, e.Text...),
			}
		case <-ctx.Done():
			return sortHosts(byKey)
		}
	}
}

func sortHosts(m map[string]Host) []Host {
	out := make([]Host, 0, len(m))
	for _, h := range m {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Instance < out[j].Instance })
	return out
}

// cleanInstance removes Zeroconf escape sequences: "\ " => " "
func cleanInstance(s string) string {
	return strings.ReplaceAll(s, `\ `, " ")
}
