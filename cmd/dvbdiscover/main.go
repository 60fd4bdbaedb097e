package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rjboer/GoDVB/internal/mdns"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Second, "Browse time")
	service := flag.String("service", mdns.DefaultService, "DNS-SD service type")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	hosts, err := mdns.DiscoverTuners(ctx, *service)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Discovery error: %v\n", err)
		os.Exit(1)
	}
	printHosts(os.Stdout, *service, hosts, time.Since(start))
}

func printHosts(w io.Writer, service string, hosts []mdns.Host, took time.Duration) {
	fmt.Fprintln(w, "===============================================================")
	fmt.Fprintf(w, " Service : %s.local\n", service)
	fmt.Fprintln(w, "---------------------------------------------------------------")

	if len(hosts) == 0 {
		fmt.Fprintf(w, "No tuner hosts found (%s)\n", took.Truncate(time.Millisecond))
		return
	}
	fmt.Fprintf(w, "Discovered %d host(s) in %s\n", len(hosts), took.Truncate(time.Millisecond))
	fmt.Fprintln(w, "===============================================================")

	for i, h := range hosts {
		fmt.Fprintf(w, " Host #%d\n", i+1)
		fmt.Fprintln(w, "---------------------------------------------------------------")
		fmt.Fprintf(w, " Instance : %s\n", h.Instance)
		fmt.Fprintf(w, " Hostname : %s\n", h.Hostname)
		fmt.Fprintf(w, " Port     : %d\n", h.Port)

		fmt.Fprintln(w, " Addresses:")
		if len(h.Addresses) == 0 {
			fmt.Fprintln(w, "   <none>")
		}
		for _, ip := range h.Addresses {
			fmt.Fprintf(w, "   - %s\n", ip.String())
		}

		fmt.Fprintln(w, " TXT Records:")
		if len(h.TXT) == 0 {
			fmt.Fprintln(w, "   <none>")
		}
		for _, txt := range h.TXT {
			fmt.Fprintf(w, "   - %s\n", txt)
		}

		bus, ok := h.TXTValue("i2c_bus")
		if !ok {
			bus = "0"
		}
		fmt.Fprintf(w, " Use      : dvbtune -backend ssh -ssh-host %s -ssh-i2c-bus %s\n", h.Addr(), bus)
		fmt.Fprintln(w, "===============================================================")
	}
}
