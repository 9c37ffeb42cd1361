package ingest

import (
	"bufio"
	"io"
	"strings"
)

// CrashMarker is a terminal failure found in an error stream.
type CrashMarker struct {
	Iteration  int    `yaml:"iteration"`
	Text       string `yaml:"text"`
	SourceLine int    `yaml:"source_line"`
}

// crashPrefixes are the message shapes that terminate a simulation run.
var crashPrefixes = []string{
	"panic:",
	"FATAL",
	"Traceback (most recent call last)",
}

// FindCrash scans an error stream for the first crash marker. The crash
// iteration comes from the marker line's own prefix when present, otherwise
// from the nearest preceding iteration-prefixed line.
func FindCrash(r io.Reader) (CrashMarker, bool) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	lastIteration := 0
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()

		body := line
		if m := prefixRe.FindStringSubmatch(line); m != nil {
			lastIteration = mustAtoi(m[1])
			body = m[2]
		}

		for _, p := range crashPrefixes {
			if strings.HasPrefix(strings.TrimSpace(body), p) {
				return CrashMarker{
					Iteration:  lastIteration,
					Text:       strings.TrimSpace(body),
					SourceLine: lineNo,
				}, true
			}
		}
	}
	return CrashMarker{}, false
}
