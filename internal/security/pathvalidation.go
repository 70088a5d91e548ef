package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrOutsideDataDir is returned for an input path that escapes the data directory.
var ErrOutsideDataDir = errors.New("path escapes data directory")

// ValidatePathWithinDirectory checks that filePath stays inside safeDir once
// both are made absolute and any symlinks are resolved.
func ValidatePathWithinDirectory(filePath, safeDir string) error {
	absPath, err := filepath.Abs(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("resolve %s: %w", filePath, err)
	}
	absDir, err := filepath.Abs(safeDir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", safeDir, err)
	}
	canonicalDir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", safeDir, err)
	}

	rel, err := filepath.Rel(canonicalDir, canonicalize(absPath))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOutsideDataDir, filePath)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s is not under %s", ErrOutsideDataDir, filePath, safeDir)
	}
	return nil
}

// canonicalize resolves symlinks in p. For a path that does not exist yet it
// resolves the deepest existing parent and re-attaches the rest.
func canonicalize(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	for check := p; ; {
		parent := filepath.Dir(check)
		if parent == check {
			return p
		}
		if resolved, err := filepath.EvalSymlinks(parent); err == nil {
			rest, _ := filepath.Rel(parent, p)
			return filepath.Join(resolved, rest)
		}
		check = parent
	}
}

// ResolveInputs joins relative input paths onto dataDir and rejects any
// that land outside it. With an empty dataDir the paths are returned cleaned
// and unchecked.
func ResolveInputs(files []string, dataDir string) ([]string, error) {
	out := make([]string, len(files))
	for i, f := range files {
		if dataDir == "" {
			out[i] = filepath.Clean(f)
			continue
		}
		p := f
		if !filepath.IsAbs(p) {
			p = filepath.Join(dataDir, p)
		}
		if err := ValidatePathWithinDirectory(p, dataDir); err != nil {
			return nil, fmt.Errorf("input %d: %w", i+1, err)
		}
		out[i] = p
	}
	return out, nil
}

// SanitizeFilename turns an arbitrary title into a file-name stem. Runs of
// characters outside [A-Za-z0-9._-] collapse to one underscore and the result
// is capped at 128 bytes.
func SanitizeFilename(s string) string {
	const maxLen = 128
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case r < 128 && (r == '.' || r == '_' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')):
			b.WriteRune(r)
			lastUnderscore = r == '_'
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "response"
	}
	return out
}
