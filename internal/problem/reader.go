package problem

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"transport/pkg/apperror"
)

// ReadFile loads a problem from a text file.
//
// Format:
//
//	n m
//	c11 c12 ... c1m s1
//	...
//	cn1 cn2 ... cnm sn
//	d1 d2 ... dm
//
// Each supplier line carries its m unit costs followed by its supply;
// the final line carries the m demands. Blank lines are ignored.
func ReadFile(path string) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeMalformedFile, "cannot open problem file").
			WithDetails("path", path)
	}
	defer f.Close()

	return Read(f)
}

// Read parses a problem from r using the same format as ReadFile.
func Read(r io.Reader) (*Problem, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeMalformedFile, "cannot read problem data")
	}

	if len(lines) < 3 {
		return nil, apperror.New(apperror.CodeMalformedFile, "problem file must contain a header, supplier lines and a demand line").
			WithDetails("lines", len(lines))
	}

	header := strings.Fields(lines[0])
	if len(header) != 2 {
		return nil, apperror.New(apperror.CodeMalformedFile, "first line must contain exactly two numbers: n m")
	}
	n, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeMalformedFile, "invalid supplier count")
	}
	m, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeMalformedFile, "invalid destination count")
	}
	if n <= 0 || m <= 0 {
		return nil, apperror.New(apperror.CodeMalformedFile, "dimensions must be positive").
			WithDetails("n", n).
			WithDetails("m", m)
	}

	if len(lines) != n+2 {
		return nil, apperror.New(apperror.CodeMalformedFile, "unexpected number of lines").
			WithDetails("expected", n+2).
			WithDetails("actual", len(lines))
	}

	costs := make([][]float64, n)
	supplies := make([]float64, n)
	for i := 0; i < n; i++ {
		values, err := parseFloats(lines[i+1])
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeMalformedFile, "invalid supplier line").
				WithDetails("line", i+2)
		}
		if len(values) != m+1 {
			return nil, apperror.New(apperror.CodeMalformedFile, "supplier line must contain m costs followed by the supply").
				WithDetails("line", i+2).
				WithDetails("expected", m+1).
				WithDetails("actual", len(values))
		}
		costs[i] = values[:m]
		supplies[i] = values[m]
	}

	demands, err := parseFloats(lines[n+1])
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeMalformedFile, "invalid demand line")
	}
	if len(demands) != m {
		return nil, apperror.New(apperror.CodeMalformedFile, "demand line must contain m values").
			WithDetails("expected", m).
			WithDetails("actual", len(demands))
	}

	return New(costs, supplies, demands)
}

func parseFloats(line string) ([]float64, error) {
	fields := strings.Fields(line)
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
