package render

import (
	"fmt"
	"io"
	"strings"
)

// Backend selects the output format.
type Backend string

const (
	BackendHTML Backend = "html"
	BackendPNG  Backend = "png"
	BackendSVG  Backend = "svg"
)

// Backends lists every supported backend.
var Backends = []Backend{BackendHTML, BackendPNG, BackendSVG}

// ParseBackend resolves a backend name, case-insensitively.
func ParseBackend(s string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Backends {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown backend %q (want html, png or svg)", s)
}

// Ext returns the file extension for the backend, with the leading dot.
func (b Backend) Ext() string { return "." + string(b) }

// Renderer writes a Chart to w.
type Renderer interface {
	Render(c *Chart, w io.Writer) error
}

// New returns the renderer for backend b.
func New(b Backend) (Renderer, error) {
	switch b {
	case BackendHTML:
		return &HTMLRenderer{AssetsHost: DefaultAssetsHost}, nil
	case BackendPNG, BackendSVG:
		return &ImageRenderer{Format: string(b)}, nil
	}
	return nil, fmt.Errorf("unknown backend %q", b)
}
