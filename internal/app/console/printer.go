package console

import (
	"io"
	"sync"

	"inspectd/internal/app/packet"
)

// Printer writes the packets accepted by its filter
type Printer interface {
	Print(p packet.Packet)
	Printed() int
}

type printer struct {
	mu        sync.Mutex
	w         io.Writer
	filter    Filter
	formatter *Formatter
	printed   int
}

// NewPrinter creates a printer writing to w. A nil filter prints everything.
func NewPrinter(w io.Writer, formatter *Formatter, filter Filter) Printer {
	return &printer{
		w:         w,
		filter:    filter,
		formatter: formatter,
	}
}

func (p *printer) Print(pkt packet.Packet) {
	s := packet.Summarize(pkt)

	if p.filter != nil && !p.filter.Match(s) {
		return
	}

	line := p.formatter.Format(s)

	p.mu.Lock()
	defer p.mu.Unlock()

	io.WriteString(p.w, line)
	p.printed++
}

// Printed returns how many packets passed the filter
func (p *printer) Printed() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.printed
}
