package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-mwpm/mwt"
)

// readRecord parses whitespace separated x y z columns, one sample per
// line. Blank lines and lines starting with '#' are skipped.
func readRecord(r io.Reader, t0, dt float64) (mwt.ThreeComponent, error) {
	var cols [3][]float64
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 3 {
			return mwt.ThreeComponent{}, fmt.Errorf("line %d: want 3 columns, got %d", line, len(fields))
		}
		for axis, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return mwt.ThreeComponent{}, fmt.Errorf("line %d column %d: %w", line, axis+1, err)
			}
			cols[axis] = append(cols[axis], v)
		}
	}
	if err := sc.Err(); err != nil {
		return mwt.ThreeComponent{}, fmt.Errorf("read input: %w", err)
	}

	tc := mwt.NewThreeComponent(t0, dt, cols[mwt.AxisX], cols[mwt.AxisY], cols[mwt.AxisZ])
	return tc, tc.Validate()
}
