package adapter

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/banshee-data/response.report/internal/monitoring"
	"github.com/banshee-data/response.report/internal/table"
	"github.com/banshee-data/response.report/internal/units"
)

const maxLineBytes = 1 << 20

// Whitespace reads plain-text tables whose columns are separated by runs of
// whitespace. The time axis is the 0-based row index; blank lines are skipped.
type Whitespace struct {
	format     string
	signalCol  int
	signalName string
	opts       Options
}

// NewPM320 handles PM320 text exports, taking column 6 as "Power_dshape".
func NewPM320(opts Options) *Whitespace {
	return &Whitespace{format: FormatPM320, signalCol: 6, signalName: "Power_dshape", opts: opts}
}

// Format returns the layout tag.
func (a *Whitespace) Format() string { return a.format }

// Read parses each table in order.
func (a *Whitespace) Read(paths []string) (*table.UniformTable, error) {
	return readEach(a.format, paths, a.readFile)
}

func (a *Whitespace) readFile(index int, path string) (table.Series, error) {
	s := table.Series{Index: index, Source: path, TimeUnit: units.Samples, SignalName: a.signalName}

	f, err := a.opts.fs().Open(path)
	if err != nil {
		return s, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	s.Time, s.Signal = []float64{}, []float64{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		v, err := parseNumber(cellAt(fields, a.signalCol))
		if err != nil {
			return s, fmt.Errorf("%s: line %d column %d: %w", path, line, a.signalCol, err)
		}
		s.Time = append(s.Time, float64(len(s.Signal)))
		s.Signal = append(s.Signal, v)
	}
	if err := sc.Err(); err != nil {
		return s, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if len(s.Signal) == 0 {
		if !a.opts.Lenient {
			return s, &InsufficientDataError{Path: path, Format: a.format, Rows: 0, Required: 1}
		}
		monitoring.Logf("adapter %s: %s has no data rows; keeping empty series", a.format, path)
	}
	return s, nil
}
