// Package logmerge merges two or more timestamped log files into one
// stream ordered by timestamp.
//
// A timestamped log looks something like:
//
//	[01/Jun/2012 12:29:17.953] INFO info message
//	[01/Jun/2012 12:29:17.983] WARNING warning message
//
// The pattern must contain a group named "date", matched against the
// configured time layout, and a group named "msg" with the rest of the
// entry.
package logmerge

import (
	"bufio"
	"container/heap"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"
)

const (
	DefaultPattern = `\[(?P<date>[^\]]+)\] (?P<msg>.+)`
	DefaultLayout  = "02/Jan/2006 15:04:05.000"
)

var ErrBadPattern = errors.New(`logmerge: pattern must have "date" and "msg" groups`)

type Config struct {
	Pattern *regexp.Regexp // nil means DefaultPattern
	Layout  string         // empty means DefaultLayout
}

// cursor is the read position inside one input, holding its most
// recently parsed entry.
type cursor struct {
	scanner *bufio.Scanner
	src     int // input index, keeps equal timestamps in argument order
	when    time.Time
	msg     string
}

type merger struct {
	pattern *regexp.Regexp
	layout  string
	dateIdx int
	msgIdx  int
}

// next advances c to its next matching line. Lines that do not match
// the pattern are skipped; a date that does not parse is an error.
func (m *merger) next(c *cursor) (bool, error) {
	for c.scanner.Scan() {
		match := m.pattern.FindStringSubmatch(c.scanner.Text())
		if match == nil {
			continue
		}
		when, err := time.Parse(m.layout, match[m.dateIdx])
		if err != nil {
			return false, fmt.Errorf("logmerge: %w", err)
		}
		c.when = when
		c.msg = match[m.msgIdx]
		return true, nil
	}
	return false, c.scanner.Err()
}

// Merge interleaves the inputs by timestamp and writes the result to w,
// one "date - message" line per entry.
func (cfg Config) Merge(w io.Writer, inputs ...io.Reader) error {
	m, err := newMerger(cfg)
	if err != nil {
		return err
	}

	q := &queue{}
	for i, input := range inputs {
		c := &cursor{scanner: bufio.NewScanner(input), src: i}
		ok, err := m.next(c)
		if err != nil {
			return err
		}
		if ok {
			*q = append(*q, c)
		}
	}
	heap.Init(q)

	bw := bufio.NewWriter(w)
	for q.Len() > 0 {
		c := (*q)[0]
		fmt.Fprintf(bw, "%s - %s\n", c.when.Format(m.layout), c.msg)

		ok, err := m.next(c)
		if err != nil {
			return err
		}
		if ok {
			heap.Fix(q, 0)
		} else {
			heap.Pop(q)
		}
	}
	return bw.Flush()
}

func newMerger(cfg Config) (*merger, error) {
	m := &merger{pattern: cfg.Pattern, layout: cfg.Layout}
	if m.pattern == nil {
		m.pattern = regexp.MustCompile(DefaultPattern)
	}
	if m.layout == "" {
		m.layout = DefaultLayout
	}

	m.dateIdx, m.msgIdx = -1, -1
	for i, name := range m.pattern.SubexpNames() {
		switch name {
		case "date":
			m.dateIdx = i
		case "msg":
			m.msgIdx = i
		}
	}
	if m.dateIdx < 0 || m.msgIdx < 0 {
		return nil, ErrBadPattern
	}
	return m, nil
}

// queue is a min-heap of cursors ordered by entry timestamp.
type queue []*cursor

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].when.Equal(q[j].when) {
		return q[i].src < q[j].src
	}
	return q[i].when.Before(q[j].when)
}

func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queue) Push(x any) { *q = append(*q, x.(*cursor)) }

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	c := old[n-1]
	*q = old[:n-1]
	return c
}
