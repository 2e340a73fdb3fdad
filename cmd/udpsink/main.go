package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/frechilla/udptools/internal/sink"
)

const defaultListenAddr = "0.0.0.0:9999"

func main() {
	log.SetFlags(log.Ldate | log.Lmicroseconds)

	var listen string
	flag.StringVar(&listen, "listen", defaultListenAddr, "IP:PORT to receive UDP packets on.")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sink.ListenAndServe(ctx, sink.Config{Addr: listen}); err != nil {
		log.Fatal(err)
	}
}
