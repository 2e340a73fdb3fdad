package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/frechilla/udptools/internal/gen"
)

func main() {
	log.SetFlags(log.Ldate | log.Lmicroseconds)

	var usec int
	var verbose bool
	var maxSize int
	var raw bool
	var mtu int
	var srcPort int
	var count int
	flag.IntVar(&usec, "usec-interval", 0, "Microseconds between packets sent.")
	flag.IntVar(&usec, "u", usec, "Microseconds between packets sent.")
	flag.BoolVar(&verbose, "verbose", false, "Give more verbose output.")
	flag.BoolVar(&verbose, "v", verbose, "Give more verbose output.")
	flag.IntVar(&maxSize, "max", gen.DefaultMaxSize,
		"Maximum size of every UDP packet sent (plain sockets). Sizes bigger than the network MTU may cause IP fragmentation.")
	flag.BoolVar(&raw, "raw", false, "Send through a raw socket with hand-built IP/UDP headers instead of a plain socket.")
	flag.IntVar(&mtu, "mtu", gen.DefaultMTU, "MTU of your network, used as the maximum packet size with raw sockets.")
	flag.IntVar(&srcPort, "src-port", 0, "Source port for the UDP headers (raw sockets). Default is the destination port.")
	flag.IntVar(&count, "count", 0, "Number of packets to send before exiting. 0 means send until interrupted.")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] IP:PORT\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	host, port := splitHostPort(flag.Arg(0))

	cfg := gen.Config{
		Host:     host,
		Port:     port,
		SrcPort:  srcPort,
		Raw:      raw,
		MTU:      mtu,
		MaxSize:  maxSize,
		Interval: time.Duration(usec) * time.Microsecond,
		Count:    count,
		Verbose:  verbose,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := gen.Run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

func splitHostPort(arg string) (string, int) {
	host, portStr, err := net.SplitHostPort(arg)
	if err != nil {
		log.Fatal("Invalid IP:PORT pair: ", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatal("Invalid PORT in IP:PORT pair: ", err)
	}
	return host, port
}
