package mdns

import (
	"context"
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func entry(instance, host string, port int, ips ...string) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, DefaultService, "local.")
	e.HostName = host
	e.Port = port
	for _, ip := range ips {
		parsed := net.ParseIP(ip)
		if parsed.To4() != nil {
			e.AddrIPv4 = append(e.AddrIPv4, parsed)
		} else {
			e.AddrIPv6 = append(e.AddrIPv6, parsed)
		}
	}
	e.Text = []string{"bus=1", "demod=0x69"}
	return e
}

func TestCollectDeduplicatesAndSorts(t *testing.T) {
	ch := make(chan *zeroconf.ServiceEntry, 4)
	ch <- entry(`tuner\ b`, "b.local.", 22, "10.0.0.2")
	ch <- nil
	ch <- entry(`tuner\ a`, "a.local.", 22, "fe80::1", "10.0.0.1")
	ch <- entry(`tuner\ a`, "a.local.", 22, "10.0.0.1")
	close(ch)

	hosts := collect(context.Background(), ch)
	if len(hosts) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(hosts))
	}
	if hosts[0].Instance != "tuner a" || hosts[1].Instance != "tuner b" {
		t.Fatalf("order %q %q", hosts[0].Instance, hosts[1].Instance)
	}
	if hosts[0].Addr() != "10.0.0.1:22" {
		t.Fatalf("addr %s", hosts[0].Addr())
	}
	if v, ok := hosts[0].TXTValue("demod"); !ok || v != "0x69" {
		t.Fatalf("txt %q %v", v, ok)
	}
	if _, ok := hosts[0].TXTValue("missing"); ok {
		t.Fatalf("missing key found")
	}
}

func TestCollectStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if hosts := collect(ctx, make(chan *zeroconf.ServiceEntry)); len(hosts) != 0 {
		t.Fatalf("hosts %v", hosts)
	}
}

func TestAddrFallbacks(t *testing.T) {
	h := Host{Hostname: "rack.local.", Port: 2222, Addresses: []net.IP{net.ParseIP("fe80::1")}}
	if h.Addr() != "[fe80::1]:2222" {
		t.Fatalf("ipv6 addr %s", h.Addr())
	}
	h.Addresses = nil
	if h.Addr() != "rack.local:2222" {
		t.Fatalf("hostname addr %s", h.Addr())
	}
}
