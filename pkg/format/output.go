package format

import (
	"html"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Output receives printed text. Only visible characters count towards the
// line width; color codes and markup do not.
type Output interface {
	// Write writes visible text.
	Write(s string)
	// WriteColored writes visible text highlighted with c.
	WriteColored(c Color, s string)
	// NewTempBuffer returns an empty in-memory output of the same kind, used
	// to measure a candidate line.
	NewTempBuffer() Output
	// WriteBuffer appends the contents of a temp buffer.
	WriteBuffer(buf Output)
	// NumChars returns the number of visible characters written so far.
	NumChars() int
	// FileHeader and FileFooter wrap a whole document.
	FileHeader()
	FileFooter()
	// Err returns the first error of the underlying writer.
	Err() error
}

type sink struct {
	w     io.Writer
	buf   *strings.Builder // set for temp buffers
	chars int
	err   error
}

func newSink(w io.Writer) sink {
	return sink{w: w}
}

func newBufferSink() sink {
	b := &strings.Builder{}
	return sink{w: b, buf: b}
}

func (s *sink) raw(text string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, text)
}

func (s *sink) visible(text string) {
	s.chars += utf8.RuneCountInString(text)
}

func (s *sink) contents() (string, int) {
	if s.buf == nil {
		return "", 0
	}
	return s.buf.String(), s.chars
}

func (s *sink) NumChars() int { return s.chars }
func (s *sink) Err() error    { return s.err }
func (s *sink) FileHeader()   {}
func (s *sink) FileFooter()   {}

// buffered is implemented by the temp buffers of every output.
type buffered interface {
	contents() (string, int)
}

func (s *sink) WriteBuffer(buf Output) {
	b, ok := buf.(buffered)
	if !ok {
		return
	}
	text, n := b.contents()
	s.raw(text)
	s.chars += n
}

// TextOutput writes plain text and ignores colors.
type TextOutput struct {
	sink
}

// NewTextOutput returns a plain text output.
func NewTextOutput(w io.Writer) *TextOutput {
	return &TextOutput{sink: newSink(w)}
}

func (o *TextOutput) Write(s string) {
	o.raw(s)
	o.visible(s)
}

func (o *TextOutput) WriteColored(_ Color, s string) {
	o.Write(s)
}

func (o *TextOutput) NewTempBuffer() Output {
	return &TextOutput{sink: newBufferSink()}
}

// AnsiOutput highlights text with ANSI escape sequences, for terminals.
type AnsiOutput struct {
	sink
	colors map[Color]*color.Color
}

// NewAnsiOutput returns an output that always emits color, whether or not w
// is a terminal.
func NewAnsiOutput(w io.Writer) *AnsiOutput {
	return &AnsiOutput{sink: newSink(w), colors: ansiColors()}
}

func ansiColors() map[Color]*color.Color {
	m := map[Color]*color.Color{
		ColorTypeName:    color.New(color.FgYellow),
		ColorStringConst: color.New(color.Bold),
		ColorOtherConst:  color.New(color.FgGreen),
		ColorUserType:    color.New(color.FgGreen),
	}
	for _, c := range m {
		c.EnableColor()
	}
	return m
}

func (o *AnsiOutput) Write(s string) {
	o.raw(s)
	o.visible(s)
}

func (o *AnsiOutput) WriteColored(c Color, s string) {
	o.raw(o.colors[c].Sprint(s))
	o.visible(s)
}

func (o *AnsiOutput) NewTempBuffer() Output {
	return &AnsiOutput{sink: newBufferSink(), colors: o.colors}
}

// HTMLOutput escapes text and highlights it with CSS classes.
type HTMLOutput struct {
	sink
}

// NewHTMLOutput returns an HTML output.
func NewHTMLOutput(w io.Writer) *HTMLOutput {
	return &HTMLOutput{sink: newSink(w)}
}

var cssClasses = map[Color]string{
	ColorTypeName:    "n",
	ColorStringConst: "s",
	ColorOtherConst:  "o",
	ColorUserType:    "o",
}

func (o *HTMLOutput) Write(s string) {
	o.raw(html.EscapeString(s))
	o.visible(s)
}

func (o *HTMLOutput) WriteColored(c Color, s string) {
	o.raw(`<span class="` + cssClasses[c] + `">`)
	o.Write(s)
	o.raw("</span>")
}

func (o *HTMLOutput) NewTempBuffer() Output {
	return &HTMLOutput{sink: newBufferSink()}
}

func (o *HTMLOutput) FileHeader() {
	o.raw(`<html>
  <head>
    <title>syntax tree</title>
    <style>
      .n { color: brown }
      .s { font-weight: bold }
      .o { color: darkgreen }
    </style>
  </head>
  <body>
    <pre>
`)
}

func (o *HTMLOutput) FileFooter() {
	o.raw(`
    </pre>
  </body>
</html>
`)
}

// DetectConsoleOutput returns an AnsiOutput when f is a terminal and a
// TextOutput otherwise.
func DetectConsoleOutput(f *os.File) Output {
	if term.IsTerminal(int(f.Fd())) {
		return NewAnsiOutput(f)
	}
	return NewTextOutput(f)
}
