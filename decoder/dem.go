package decoder

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDEM parses a Stim-style detector error model text into a
// UserGraph. It handles error(p) D<i> [D<j>] [L<k>...] [^ ...] lines,
// detector D<i> declarations, repeat N { ... } blocks with per-iteration
// detector-index shifting, # comments, blank lines, and silently skips
// any other instruction (shift_detectors outside a repeat body,
// logical_observable, and so on).
func ParseDEM(text string) (*UserGraph, error) {
	g := NewUserGraph()
	lines := strings.Split(text, "\n")
	if _, err := parseDEMBlock(lines, g, 0); err != nil {
		return nil, err
	}
	return g, nil
}

// parseDEMBlock parses lines into g, shifting every detector index it
// sees by detectorOffset, and returns the maximum detector index observed:
// error and detector lines contribute their raw (pre-offset) index, while a
// nested repeat block contributes its maximum including detectorOffset.
func parseDEMBlock(lines []string, g *UserGraph, detectorOffset int) (int, error) {
	maxDetector := 0
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "#") {
			i++
			continue
		}

		switch {
		case strings.HasPrefix(line, "error"):
			det, err := parseErrorLine(line, g, detectorOffset)
			if err != nil {
				return 0, err
			}
			if det > maxDetector {
				maxDetector = det
			}
			i++
		case strings.HasPrefix(line, "detector"):
			det, err := parseDetectorLine(line, g, detectorOffset)
			if err != nil {
				return 0, err
			}
			if det > maxDetector {
				maxDetector = det
			}
			i++
		case strings.HasPrefix(line, "repeat"):
			det, consumed, err := parseRepeat(lines, i, g, detectorOffset)
			if err != nil {
				return 0, err
			}
			if det > maxDetector {
				maxDetector = det
			}
			i += consumed
		default:
			i++
		}
	}
	return maxDetector, nil
}

// parseErrorLine parses `error(p) D<i> [D<j>] [L<k>...] [^ ...]`,
// dropping anything after a `^` correlated-error separator, and returns
// the max raw detector index seen.
func parseErrorLine(line string, g *UserGraph, detectorOffset int) (int, error) {
	if idx := strings.IndexByte(line, '^'); idx >= 0 {
		line = line[:idx]
	}

	open := strings.IndexByte(line, '(')
	close := strings.IndexByte(line, ')')
	if open < 0 {
		return 0, fmt.Errorf("dem: error line missing '(': %q", line)
	}
	if close < 0 {
		return 0, fmt.Errorf("dem: error line missing ')': %q", line)
	}

	p, err := strconv.ParseFloat(strings.TrimSpace(line[open+1:close]), 64)
	if err != nil {
		return 0, fmt.Errorf("dem: bad probability: %w", err)
	}

	var detectors []int
	var observables []int
	maxDet := 0

	for _, token := range strings.Fields(line[close+1:]) {
		switch token[0] {
		case 'D':
			idx, err := strconv.Atoi(token[1:])
			if err != nil {
				return 0, fmt.Errorf("dem: bad detector index: %w", err)
			}
			if idx > maxDet {
				maxDet = idx
			}
			detectors = append(detectors, idx+detectorOffset)
		case 'L':
			idx, err := strconv.Atoi(token[1:])
			if err != nil {
				return 0, fmt.Errorf("dem: bad observable index: %w", err)
			}
			observables = append(observables, idx)
		}
	}

	if err := g.HandleDEMInstruction(p, detectors, observables); err != nil {
		return 0, err
	}
	return maxDet, nil
}

// parseDetectorLine parses `detector D<i> [coords...]`, ensuring the
// node exists; coordinates are ignored. Returns the raw detector index.
func parseDetectorLine(line string, g *UserGraph, detectorOffset int) (int, error) {
	fields := strings.Fields(line)
	for _, token := range fields[1:] {
		if len(token) > 0 && token[0] == 'D' {
			idx, err := strconv.Atoi(token[1:])
			if err != nil {
				return 0, fmt.Errorf("dem: bad detector index: %w", err)
			}
			g.ensureNode(idx + detectorOffset)
			return idx, nil
		}
	}
	return 0, nil
}

// parseRepeat parses a `repeat N { ... }` block starting at lines[start],
// replaying its body count times with each iteration's detector indices
// shifted by an explicit shift_detectors value (if present) or by one
// past the body's own maximum detector index. Returns the overall
// maximum absolute detector index reached and the number of source lines
// consumed.
func parseRepeat(lines []string, start int, g *UserGraph, detectorOffset int) (int, int, error) {
	header := strings.TrimSpace(lines[start])
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return 0, 0, fmt.Errorf("dem: repeat missing count: %q", header)
	}
	count, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("dem: bad repeat count: %w", err)
	}

	var bodyLines []string
	depth := 0
	end := start
	for j := 0; start+j < len(lines); j++ {
		l := lines[start+j]
		trimmed := strings.TrimSpace(l)
		if strings.Contains(trimmed, "{") {
			depth++
		}
		if strings.Contains(trimmed, "}") {
			depth--
			if depth == 0 {
				end = start + j
				break
			}
		}
		if j > 0 && depth > 0 {
			bodyLines = append(bodyLines, l)
		}
	}

	explicitShift, hasExplicitShift := findShiftDetectors(bodyLines)

	scratch := NewUserGraph()
	maxDetInBody, err := parseDEMBlock(bodyLines, scratch, 0)
	if err != nil {
		return 0, 0, err
	}

	shiftPerIter := maxDetInBody + 1
	if hasExplicitShift {
		shiftPerIter = explicitShift
	}

	overallMax := 0
	for iteration := 0; iteration < count; iteration++ {
		iterOffset := detectorOffset + iteration*shiftPerIter
		det, err := parseDEMBlock(bodyLines, g, iterOffset)
		if err != nil {
			return 0, 0, err
		}
		absolute := det + iterOffset
		if absolute > overallMax {
			overallMax = absolute
		}
	}

	return overallMax, end - start + 1, nil
}

// findShiftDetectors looks for a `shift_detectors N` instruction among
// lines and returns its value, if present.
func findShiftDetectors(lines []string) (int, bool) {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "shift_detectors") {
			fields := strings.Fields(trimmed)
			if len(fields) >= 2 {
				if val, err := strconv.Atoi(fields[1]); err == nil {
					return val, true
				}
			}
		}
	}
	return 0, false
}
