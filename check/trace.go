package check

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/eaburns/dtt/loc"
)

var (
	traceDepth = flag.Int("trace.depth", 0, "max depth for trace (0 = no trace; -1 = infinite)")
)

const traceIndent = "\t"

var bullets = []string{"•", "◦", "▪", "▫"}

type tracer struct {
	w      io.Writer
	depth  int
	files  loc.Files
	indent string
	bullet int
}

type traceItem struct {
	tr     *tracer
	indent string
	bullet int
}

func (c *Checker) trItem(f string, vs ...interface{}) *traceItem {
	tr := &c.tracer
	item := &traceItem{tr: tr, indent: tr.indent, bullet: tr.bullet}
	tr.indent += traceIndent
	tr.bullet++
	item.trace(f, vs...)
	return item
}

func (item *traceItem) done() {
	item.tr.indent = strings.TrimSuffix(item.tr.indent, traceIndent)
	item.tr.bullet--
}

func (item *traceItem) trace(f string, vs ...interface{}) {
	tr := item.tr
	if tr.depth == 0 {
		return
	}
	depth := strings.Count(item.indent, traceIndent) + 1
	if tr.depth > 0 && depth > tr.depth {
		return
	}
	for i := range vs {
		l, ok := vs[i].(loc.Loc)
		if !ok || tr.files == nil {
			continue
		}
		vs[i] = tr.files.Location(l)
	}
	s := fmt.Sprintf(f, vs...)
	s = strings.TrimSuffix(s, "\n")
	s = strings.ReplaceAll(s, "\n", "\n"+item.indent+"  ")
	if item.bullet >= 0 {
		s = bullets[item.bullet%len(bullets)] + " " + s
		item.bullet = -1
	} else {
		s = "  " + s
	}
	w := tr.w
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintln(w, item.indent+s)
}
