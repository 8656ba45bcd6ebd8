// Package loader reads RiveScript documents from disk and feeds them to a
// parser.
package loader

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/rcliao/rivebrain/internal/model"
	"github.com/rcliao/rivebrain/internal/parser"
)

// DefaultBeginFile is loaded before every other document of a directory.
const DefaultBeginFile = "begin.rs"

// maxLine bounds a single document line.
const maxLine = 1 << 20

// Options configures a Loader.
type Options struct {
	BeginFile  string   // matched case-insensitively; default DefaultBeginFile
	Extensions []string // empty loads every file
	Logger     *zap.Logger
}

// Loader drives a parser over files and directories.
type Loader struct {
	parser *parser.Parser
	begin  string
	exts   []string
	log    *zap.Logger
}

// New returns a loader feeding p.
func New(p *parser.Parser, opts Options) *Loader {
	l := &Loader{
		parser: p,
		begin:  opts.BeginFile,
		exts:   opts.Extensions,
		log:    opts.Logger,
	}
	if l.begin == "" {
		l.begin = DefaultBeginFile
	}
	if l.log == nil {
		l.log = zap.NewNop()
	}
	return l
}

// Load loads path as a directory or a single file.
func (l *Loader) Load(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return l.LoadDirectory(path)
	}
	return l.LoadFile(path)
}

// LoadDirectory loads every document in dir, begin file first. The first
// failing document stops the load; earlier documents stay in the brain.
func (l *Loader) LoadDirectory(dir string) error {
	l.log.Debug("Loading directory", zap.String("dir", dir))

	files, err := l.Files(dir)
	if err != nil {
		return err
	}
	for _, name := range files {
		path := filepath.Join(dir, name)
		if err := l.LoadFile(path); err != nil {
			l.log.Warn("Couldn't load file", zap.String("file", path), zap.Error(err))
			return err
		}
	}
	return nil
}

// Files lists the documents of dir in load order: the begin file, then the
// rest sorted by name. Hidden files and subdirectories are skipped.
func (l *Loader) Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var begin string
	var files []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || e.IsDir() || !l.wanted(name) {
			continue
		}
		if begin == "" && strings.EqualFold(name, l.begin) {
			begin = name
			continue
		}
		files = append(files, name)
	}

	sort.Strings(files)
	if begin != "" {
		files = append([]string{begin}, files...)
	}
	return files, nil
}

func (l *Loader) wanted(name string) bool {
	if len(l.exts) == 0 {
		return true
	}
	ext := filepath.Ext(name)
	for _, want := range l.exts {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// LoadFile parses a single document.
func (l *Loader) LoadFile(path string) error {
	l.log.Debug("Loading document", zap.String("file", path))

	lines, err := ReadLines(path)
	if err != nil {
		l.log.Warn("Unable to open file for reading", zap.String("file", path), zap.Error(err))
		return err
	}
	if err := l.parser.Parse(path, lines); err != nil {
		l.log.Warn("Failed to parse", zap.String("file", path), zap.Error(err))
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ReadLines returns the lines of the file at path.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// BuildParams describes a one-shot build of a fresh brain.
type BuildParams struct {
	Path             string
	SupportedVersion float64
	Reporter         parser.Reporter
	Loader           Options
}

// Build loads Path into a new brain. The brain is returned even on error so
// callers can inspect what was loaded before the failure.
func Build(p BuildParams) (*model.Brain, error) {
	brain := model.NewBrain()
	ps := parser.New(brain, parser.Options{
		SupportedVersion: p.SupportedVersion,
		Reporter:         p.Reporter,
	})
	err := New(ps, p.Loader).Load(p.Path)
	return brain, err
}
