package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/five82/panels/internal/catalog"
	"github.com/five82/panels/internal/logtail"
)

var (
	numColor   = color.New(color.FgCyan, color.Bold)
	titleColor = color.New(color.Bold)
	faintColor = color.New(color.Faint)
	warnColor  = color.New(color.FgYellow)
	errColor   = color.New(color.FgRed, color.Bold)
)

// printItem writes one item as a short block. count is omitted when zero.
func printItem(w io.Writer, it catalog.Item, count int) {
	num := fmt.Sprintf("#%d", it.Index)
	if count > 0 {
		num = fmt.Sprintf("#%d/%d", it.Index, count)
	}
	fmt.Fprintf(w, "%s  %s", numColor.Sprint(num), titleColor.Sprint(it.DisplayTitle()))
	if date := it.Date(); date != "" {
		fmt.Fprintf(w, "  %s", faintColor.Sprint(date))
	}
	fmt.Fprintln(w)
	if img := strings.TrimSpace(it.Img); img != "" {
		fmt.Fprintf(w, "  %s\n", img)
	}
	if alt := strings.TrimSpace(it.Alt); alt != "" {
		fmt.Fprintf(w, "  %s\n", faintColor.Sprint(alt))
	}
}

// printLogLine writes one log line, coloured by level when it parses.
func printLogLine(w io.Writer, line string) {
	entry, ok := logtail.Parse(line)
	if !ok {
		fmt.Fprintln(w, line)
		return
	}
	text := entry.Format()
	switch strings.ToUpper(entry.Level) {
	case "ERROR":
		text = errColor.Sprint(text)
	case "WARN":
		text = warnColor.Sprint(text)
	case "DEBUG":
		text = faintColor.Sprint(text)
	}
	fmt.Fprintln(w, text)
}
