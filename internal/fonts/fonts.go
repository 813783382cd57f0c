// Package fonts resolves descriptor font families and weights to
// loadable font faces. Families are declared in a TOML font map; any
// family or file that cannot be loaded falls back to the embedded Go
// fonts so rendering never fails on typography.
package fonts

import (
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/gogpu/gg/text"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Config is the font map file shape:
//
//	[family.arial]
//	regular = "fonts/arial.ttf"
//	bold = "fonts/arialbd.ttf"
type Config struct {
	Family map[string]FamilyFiles `toml:"family"`
}

// FamilyFiles points at the TTF files for one family.
type FamilyFiles struct {
	Regular string `toml:"regular"`
	Bold    string `toml:"bold"`
}

// Library caches parsed font sources per file and hands out faces at
// requested sizes. Safe for concurrent use.
type Library struct {
	families map[string]FamilyFiles

	mu      sync.Mutex
	sources map[string]*text.FontSource

	fallbackRegular *text.FontSource
	fallbackBold    *text.FontSource

	log *zap.Logger
}

// Load reads a TOML font map and builds a library. A missing or
// unreadable file yields a fallback-only library and no error, so the
// portal still renders with the embedded fonts.
func Load(path string, log *zap.Logger) (*Library, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		log.Warn("font map unavailable, using embedded fonts",
			zap.String("path", path), zap.Error(err))
		cfg = Config{}
	}
	return NewLibrary(cfg, log)
}

// NewLibrary builds a library from an in-memory config.
func NewLibrary(cfg Config, log *zap.Logger) (*Library, error) {
	regular, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, err
	}
	bold, err := text.NewFontSource(gobold.TTF)
	if err != nil {
		return nil, err
	}

	families := make(map[string]FamilyFiles, len(cfg.Family))
	for name, files := range cfg.Family {
		families[strings.ToLower(name)] = files
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Library{
		families:        families,
		sources:         make(map[string]*text.FontSource),
		fallbackRegular: regular,
		fallbackBold:    bold,
		log:             log,
	}, nil
}

// Face returns a face for the given family and CSS-style weight at the
// given size. Unknown families and unloadable files fall back to the
// embedded Go fonts at the same weight.
func (l *Library) Face(family, weight string, size float64) text.Face {
	bold := IsBold(weight)

	files, ok := l.families[strings.ToLower(strings.TrimSpace(family))]
	if ok {
		path := files.Regular
		if bold && files.Bold != "" {
			path = files.Bold
		}
		if src := l.source(path); src != nil {
			return src.Face(size)
		}
	}
	if bold {
		return l.fallbackBold.Face(size)
	}
	return l.fallbackRegular.Face(size)
}

// source loads and caches the font source for one file.
func (l *Library) source(path string) *text.FontSource {
	if path == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if src, ok := l.sources[path]; ok {
		return src
	}
	src, err := text.NewFontSourceFromFile(path)
	if err != nil {
		l.log.Warn("font file unavailable, using embedded fallback",
			zap.String("path", path), zap.Error(err))
		// Cache the miss so the warning fires once per file.
		l.sources[path] = nil
		return nil
	}
	l.sources[path] = src
	return src
}

// IsBold reports whether a CSS-style weight (keyword or numeric)
// selects the bold cut.
func IsBold(weight string) bool {
	w := strings.ToLower(strings.TrimSpace(weight))
	switch w {
	case "bold", "bolder":
		return true
	}
	if n, err := strconv.Atoi(w); err == nil {
		return n >= 600
	}
	return false
}
