package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"

	"github.com/frechilla/udptools/internal/logmerge"
)

func main() {
	var output string
	var pattern string
	var layout string
	flag.StringVar(&output, "output", "", "Path to the file where the output will be written to. It is truncated if it exists.")
	flag.StringVar(&output, "o", output, "Path to the file where the output will be written to. It is truncated if it exists.")
	flag.StringVar(&pattern, "regex", logmerge.DefaultPattern,
		"Regular expression extracting dates and messages. Must have groups named \"date\" and \"msg\".")
	flag.StringVar(&layout, "date-fmt", logmerge.DefaultLayout,
		"Go time layout of the date tag in the log entries.")
	flag.Parse()

	if flag.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] FILE1 FILE2 [FILE(S)] -o OUTPUT_FILE\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	if output == "" {
		log.Fatal("Output file name missing.")
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		log.Fatalf("Regular expression %q can't be processed: %v", pattern, err)
	}

	inputs := make([]io.Reader, 0, flag.NArg())
	for _, path := range flag.Args() {
		file, err := os.Open(path)
		if err != nil {
			log.Fatal(err)
		}
		defer file.Close()
		inputs = append(inputs, file)
	}

	out, err := os.Create(output)
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()

	cfg := logmerge.Config{Pattern: re, Layout: layout}
	if err := cfg.Merge(out, inputs...); err != nil {
		log.Fatal(err)
	}
}
