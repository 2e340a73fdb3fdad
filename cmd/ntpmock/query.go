package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	beevikntp "github.com/beevik/ntp"
)

const queryTimeout = 5 * time.Second

// handleQueryCommand queries address once and prints what the server
// answered. The address may carry an explicit port ("host:port"); the
// well-known NTP port is used otherwise. Handy for pointing at a
// running mock.
func handleQueryCommand(address string) {
	response, err := beevikntp.QueryWithOptions(address, beevikntp.QueryOptions{
		Timeout: queryTimeout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	offsetString := strconv.FormatFloat(response.ClockOffset.Seconds(), 'G', 5, 64)
	if response.ClockOffset > 0 {
		offsetString = "+" + offsetString
	}
	delayString := strconv.FormatFloat(response.RTT.Seconds(), 'G', 5, 64)

	fmt.Println(offsetString, "+/-", delayString, address)
	fmt.Println("stratum", response.Stratum, "refid", refidString(response.ReferenceID))
	fmt.Println("server time", response.Time.Format(time.RFC3339Nano))
}

func refidString(refid uint32) string {
	b := []byte{byte(refid >> 24), byte(refid >> 16), byte(refid >> 8), byte(refid)}
	for _, c := range b {
		if c < ' ' || c > '~' {
			return fmt.Sprintf("%08X", refid)
		}
	}
	return string(b)
}
