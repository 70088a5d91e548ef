// Package adapter converts raw instrument exports into a table.UniformTable.
//
// Each supported layout is a fixed, instrument-dictated arrangement of rows and
// columns. Adapters only apply the documented row offset and column picks; they
// never re-index or align files against each other. Files are read one at a
// time, in the order given, and every file yields exactly one Series.
package adapter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/banshee-data/response.report/internal/fsutil"
	"github.com/banshee-data/response.report/internal/monitoring"
	"github.com/banshee-data/response.report/internal/table"
)

// Format tags.
const (
	FormatPM100D       = "pm100d"
	FormatPM320        = "pm320"
	FormatPM100DLegacy = "pm100d-legacy"
	FormatResistance   = "resistance"
)

var (
	// ErrInsufficientData is matched by errors.Is for files shorter than the layout's header offset.
	ErrInsufficientData = errors.New("insufficient data for layout")
	// ErrUnknownFormat is returned by Lookup for unregistered format tags.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrNoFiles is returned when an adapter is asked to read an empty file list.
	ErrNoFiles = errors.New("no input files")
)

// InsufficientDataError reports a file that does not reach the first data row.
type InsufficientDataError struct {
	Path     string
	Format   string
	Rows     int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: %s layout needs at least %d rows, file has %d", e.Path, e.Format, e.Required, e.Rows)
}

// Unwrap lets errors.Is match ErrInsufficientData.
func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// Adapter produces a UniformTable from an ordered list of raw export files.
type Adapter interface {
	// Format returns the layout tag handled by the adapter.
	Format() string
	// Read parses paths in order; the returned table has one Series per path.
	Read(paths []string) (*table.UniformTable, error)
}

// Options are shared by every adapter variant.
type Options struct {
	// FS is the filesystem files are opened from. Nil means the OS filesystem.
	FS fsutil.FileSystem
	// Lenient keeps files that end before the first data row as empty series
	// instead of failing with an InsufficientDataError.
	Lenient bool
}

func (o Options) fs() fsutil.FileSystem {
	if o.FS == nil {
		return fsutil.OSFileSystem{}
	}
	return o.FS
}

// FormatInfo describes a registered layout.
type FormatInfo struct {
	Tag         string
	Description string
}

type constructor struct {
	info FormatInfo
	new  func(Options) Adapter
}

var registry = map[string]constructor{
	FormatPM100D: {
		info: FormatInfo{FormatPM100D, "Thorlabs PM100D workbook: 15 metadata rows, elapsed seconds in column 5, power in column 3"},
		new:  func(o Options) Adapter { return NewPM100D(o) },
	},
	FormatPM320: {
		info: FormatInfo{FormatPM320, "Thorlabs PM320 whitespace table: power in column 6, time is the row index"},
		new:  func(o Options) Adapter { return NewPM320(o) },
	},
	FormatPM100DLegacy: {
		info: FormatInfo{FormatPM100DLegacy, "legacy PM100D workbook: data from row 23, time (ms) in column 0, power in column 1"},
		new:  func(o Options) Adapter { return NewLegacyPM100D(o) },
	},
	FormatResistance: {
		info: FormatInfo{FormatResistance, "resistance rig workbook: data from row 7, time (s) in column 0, resistance in column 3"},
		new:  func(o Options) Adapter { return NewResistance(o) },
	},
}

// Lookup returns the adapter registered for tag. Tags are case-insensitive.
func Lookup(tag string, opts Options) (Adapter, error) {
	c, ok := registry[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownFormat, tag, strings.Join(Tags(), ", "))
	}
	return c.new(opts), nil
}

// Tags returns the registered format tags in sorted order.
func Tags() []string {
	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Formats returns descriptions of all registered layouts, sorted by tag.
func Formats() []FormatInfo {
	out := make([]FormatInfo, 0, len(registry))
	for _, tag := range Tags() {
		out = append(out, registry[tag].info)
	}
	return out
}

// readEach runs readOne for every path in order and assembles the table.
func readEach(format string, paths []string, readOne func(index int, path string) (table.Series, error)) (*table.UniformTable, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}
	t := &table.UniformTable{Format: format, Series: make([]table.Series, 0, len(paths))}
	for i, path := range paths {
		s, err := readOne(i+1, path)
		if err != nil {
			return nil, err
		}
		monitoring.Debugf("adapter %s: file %d %s -> %d rows", format, s.Index, path, s.Len())
		t.Series = append(t.Series, s)
	}
	return t, nil
}
