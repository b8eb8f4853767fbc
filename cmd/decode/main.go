// Command decode is a small CLI wrapper around the sparseblossom decoder:
// it reads a detector error model and a syndrome, and prints the decoded
// observable predictions.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/sparseblossom/decoder"
)

func main() {
	demPath := flag.String("dem", "", "path to a detector error model file")
	syndromePath := flag.String("syndrome", "", "path to a syndrome file (one line of comma-separated 0/1 values, or a bitstring)")
	edgesOnly := flag.Bool("edges", false, "print matched detector-node pairs instead of observable predictions")
	flag.Parse()

	if *demPath == "" || *syndromePath == "" {
		fmt.Fprintln(os.Stderr, "usage: decode -dem <file> -syndrome <file> [-edges]")
		os.Exit(2)
	}

	demBytes, err := os.ReadFile(*demPath)
	if err != nil {
		log.Fatalf("decode: reading dem file: %v", err)
	}

	m, err := decoder.FromDEM(string(demBytes))
	if err != nil {
		log.Fatalf("decode: parsing detector error model: %v", err)
	}

	syndrome, err := readSyndrome(*syndromePath)
	if err != nil {
		log.Fatalf("decode: reading syndrome file: %v", err)
	}

	if *edgesOnly {
		pairs, err := m.DecodeToEdges(syndrome)
		if err != nil {
			log.Fatalf("decode: %v", err)
		}
		for _, p := range pairs {
			if p.HasTo {
				fmt.Printf("%d %d\n", p.From, p.To)
			} else {
				fmt.Printf("%d boundary\n", p.From)
			}
		}
		return
	}

	predictions, err := m.Decode(syndrome)
	if err != nil {
		log.Fatalf("decode: %v", err)
	}
	fmt.Println(formatPredictions(predictions))
}

// readSyndrome reads the first line of path that is neither blank nor a
// "#" comment and parses it as
// either a comma-separated list of 0/1 values or a bare bitstring like
// "01001".
func readSyndrome(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, ",") {
			return parseCSVSyndrome(line)
		}
		return parseBitstringSyndrome(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("no syndrome data found in %s", path)
}

func parseCSVSyndrome(line string) ([]byte, error) {
	fields := strings.Split(line, ",")
	out := make([]byte, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("bad syndrome value %q: %w", f, err)
		}
		if v != 0 {
			out[i] = 1
		}
	}
	return out, nil
}

func parseBitstringSyndrome(line string) ([]byte, error) {
	out := make([]byte, len(line))
	for i, c := range line {
		switch c {
		case '0':
			out[i] = 0
		case '1':
			out[i] = 1
		default:
			return nil, fmt.Errorf("bad syndrome character %q at position %d", c, i)
		}
	}
	return out, nil
}

func formatPredictions(predictions []byte) string {
	var sb strings.Builder
	for _, p := range predictions {
		if p != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
