package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/frechilla/udptools/internal/ntpserver"
	"github.com/frechilla/udptools/pkg/ntp"
)

const defaultListenAddr = "0.0.0.0:" + ntp.Port

func main() {
	log.SetFlags(log.Ldate | log.Lmicroseconds)

	var listen string
	var query string
	flag.StringVar(&listen, "listen", defaultListenAddr, "IP:PORT to answer NTP queries on.")
	flag.StringVar(&query, "query", "", "Address to query.")
	flag.StringVar(&query, "q", query, "Address to query.")
	flag.Parse()

	if query != "" {
		handleQueryCommand(query)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ntpserver.ListenAndServe(ctx, ntpserver.Config{Addr: listen}); err != nil {
		log.Fatal(err)
	}
}
