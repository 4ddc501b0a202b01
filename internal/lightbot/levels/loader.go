// Package levels provides level loading for Lightbot.
// This package depends on core but core does not depend on levels.
package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/levels/formats"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Level represents a complete level definition.
type Level struct {
	formats.Level
	FilePath string
	Builtin  bool
}

// Loader handles loading levels from a directory or an embedded tree.
type Loader struct {
	Root string
	// Logger receives a warning for every file that fails to parse. May be nil.
	Logger *log.Logger

	fsys    fs.FS
	builtin bool
}

// NewLoader creates a new level loader rooted at a directory on disk.
func NewLoader(root string) *Loader {
	return &Loader{Root: root, fsys: os.DirFS(root)}
}

// Builtin returns a loader over the embedded campaign.
func Builtin() *Loader {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(err)
	}
	return &Loader{Root: "builtin", fsys: sub, builtin: true}
}

// LoadAll recursively scans and loads all level files.
// Invalid files are skipped. Returns levels sorted by ID for deterministic ordering.
func (l *Loader) LoadAll() ([]Level, error) {
	var levels []Level

	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(path.Ext(p))
		if !isSupportedExtension(ext) {
			return nil
		}

		data, err := fs.ReadFile(l.fsys, p)
		if err != nil {
			return fmt.Errorf("reading file %s: %w", p, err)
		}
		level, err := parse(data, ext)
		if err != nil {
			if l.Logger != nil {
				l.Logger.Warn("skipping level file", "path", p, "err", err)
			}
			return nil
		}

		levels = append(levels, l.wrap(level, p))
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.Root, err)
	}

	sortByID(levels)
	return levels, nil
}

// LoadFile loads a single level file. Relative paths are resolved against the
// loader's tree; for a disk loader this is Root.
func (l *Loader) LoadFile(p string) (Level, error) {
	var (
		data []byte
		err  error
	)
	if l.fsys == nil || filepath.IsAbs(p) {
		data, err = os.ReadFile(p)
	} else {
		data, err = fs.ReadFile(l.fsys, filepath.ToSlash(p))
	}
	if err != nil {
		return Level{}, fmt.Errorf("reading file %s: %w", p, err)
	}

	level, err := parse(data, strings.ToLower(filepath.Ext(p)))
	if err != nil {
		return Level{}, fmt.Errorf("parsing file %s: %w", p, err)
	}
	return l.wrap(level, p), nil
}

// LoadByID loads a specific level by ID.
func (l *Loader) LoadByID(id string) (Level, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return Level{}, err
	}

	for _, lvl := range levels {
		if lvl.ID == id {
			return lvl, nil
		}
	}

	return Level{}, fmt.Errorf("level not found: %s", id)
}

// ListIDs returns all level IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(levels))
	for i, lvl := range levels {
		ids[i] = lvl.ID
	}
	return ids, nil
}

// Catalog loads the built-in campaign plus every level under dir.
// A level in dir replaces a built-in level with the same ID. dir may be empty.
func Catalog(dir string, logger *log.Logger) ([]Level, error) {
	builtin := Builtin()
	builtin.Logger = logger
	all, err := builtin.LoadAll()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return all, nil
	}

	disk := NewLoader(dir)
	disk.Logger = logger
	extra, err := disk.LoadAll()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]int, len(all))
	for i, lvl := range all {
		byID[lvl.ID] = i
	}
	for _, lvl := range extra {
		if i, ok := byID[lvl.ID]; ok {
			all[i] = lvl
			continue
		}
		all = append(all, lvl)
	}

	sortByID(all)
	return all, nil
}

func (l *Loader) wrap(level formats.Level, p string) Level {
	fp := p
	if !l.builtin && !filepath.IsAbs(p) && l.Root != "" {
		fp = filepath.Join(l.Root, filepath.FromSlash(p))
	}
	if level.ID == "" {
		base := filepath.Base(p)
		level.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return Level{Level: level, FilePath: fp, Builtin: l.builtin}
}

func sortByID(levels []Level) {
	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].ID < levels[j].ID
	})
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// parse routes to the correct parser.
func parse(data []byte, ext string) (formats.Level, error) {
	switch ext {
	case ".yaml", ".yml", ".json":
		return formats.ParseYAML(data)
	default:
		return formats.Level{}, fmt.Errorf("unsupported extension: %s", ext)
	}
}

// ReadFile loads a level file from disk outside any loader tree.
func ReadFile(p string) (Level, error) {
	return (&Loader{}).LoadFile(p)
}
