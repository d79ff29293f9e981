package help

import (
	"fmt"
	"strings"
)

const (
	commandColumnWidth = 22

	indentCategory = "  "
	indentCommand  = "    "
)

// RenderList writes the commands visible in the named context, grouped by
// category.
func (r *Renderer) RenderList(context string, entries []Entry) {
	r.writeln("")
	if context == "" {
		r.writeln(r.header(indentCategory + "Available commands"))
	} else {
		r.writeln(r.header(fmt.Sprintf("%sAvailable commands (%s)", indentCategory, context)))
	}
	r.writeln("")

	groups := GroupByCategory(entries)
	for _, cat := range CategoryOrder {
		list := groups[cat]
		if len(list) == 0 {
			continue
		}
		r.writeln(indentCategory + r.category(cat.DisplayName()))
		r.writeln(indentCategory + r.dim(BoxTeeLeft+strings.Repeat(BoxHorizontal, commandColumnWidth+20)))
		for _, e := range list {
			r.writeln(indentCommand + r.dim(BoxVertical+" ") +
				r.command(PadRight(e.Name, commandColumnWidth)) + r.dim(e.Summary))
		}
		r.writeln("")
	}
	r.writeln(indentCategory + r.dim("Run help <command> for usage."))
}

// RenderCommand writes the summary and usage of one command.
func (r *Renderer) RenderCommand(e Entry) {
	r.writeln(r.bold(e.Name) + " " + r.dim(e.Summary))
	if e.Usage != "" {
		r.writeln("")
		r.writeln(r.usage(strings.TrimRight(e.Usage, "\n")))
	}
}

func (r *Renderer) writeln(s string) {
	fmt.Fprintln(r.w, s)
}
