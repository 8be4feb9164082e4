// Package iohost implements the file I/O, line I/O, and colored-logging
// capabilities spec.md 6 names as out-of-scope external collaborators:
// read_line/print/println/flush/color_print, plus the source-file and
// compiled-artifact file access the CLI needs.
//
// Grounded on the teacher's own stdin/stdout handling in run.go
// (`bufio.NewReader(os.Stdin)`) for the line-buffered I/O shape, and on
// the broader pack's repeated use of a colored-output library (fatih/
// color was the most consistently idiomatic pick across the manifests)
// for the include-chain logging the compiler's color_print drives.
package iohost

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"robson/internal/compiler"
)

// Host implements both compiler.Host and interpreter.Host over a pair of
// buffered streams, plus the filesystem access the CLI needs for reading
// source and writing compiled artifacts.
type Host struct {
	in  *bufio.Reader
	out *bufio.Writer
}

// New builds a Host over the given input/output streams. The CLI entry
// point wires this to os.Stdin/os.Stdout; any io.Reader/io.Writer pair
// works.
func New(in io.Reader, out io.Writer) *Host {
	return &Host{in: bufio.NewReader(in), out: bufio.NewWriter(out)}
}

// CloneSelf produces a fresh capability handle sharing the same
// underlying streams, matching spec.md 6's clone_self() capability used
// when constructing a child compiler for an include. This Host carries no
// per-compilation state, so sharing the streams directly is safe; the
// method exists for interface fidelity with the capability set the spec
// describes.
func (h *Host) CloneSelf() *Host {
	return h
}

func (h *Host) ReadLine() (string, error) {
	line, err := h.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (h *Host) Print(s string)   { h.out.WriteString(s) }
func (h *Host) Println(s string) { h.out.WriteString(s); h.out.WriteString("\n") }
func (h *Host) Flush()           { h.out.Flush() }

// ColorPrint logs compiler include-chain activity in color: cyan for a
// file compiled fresh, yellow for one served from the compiled-size
// cache, matching the two cases compiler.ColorCode distinguishes.
func (h *Host) ColorPrint(text string, code compiler.ColorCode) {
	var c *color.Color
	switch code {
	case compiler.ColorCyan:
		c = color.New(color.FgCyan)
	case compiler.ColorYellow:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgWhite)
	}
	c.Fprintln(h.out, text)
	h.out.Flush()
}

// ReadSource reads a .robson source file into lines, the shape
// compiler.Host.ReadSource expects.
func (h *Host) ReadSource(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(string(data), "\n"), nil
}

// ReadCompiled reads a precompiled .rbsn buffer.
func (h *Host) ReadCompiled(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// CompiledPath returns the out/<basename>.rbsn path a source file compiles
// to, per spec.md 6's `compile` CLI command.
func CompiledPath(sourcePath string) string {
	dir := filepath.Join(filepath.Dir(sourcePath), "out")
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	return filepath.Join(dir, base+".rbsn")
}

// WriteCompiled writes buf to the out/<basename>.rbsn path derived from
// sourcePath, creating the out/ directory if needed.
func (h *Host) WriteCompiled(sourcePath string, buf []byte) (string, error) {
	outPath := CompiledPath(sourcePath)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, buf, 0o644); err != nil {
		return "", err
	}
	return outPath, nil
}
