// Package score loads a directory of score files into a catalog.
package score

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tansive/conductor/internal/catalog"
	"github.com/tansive/conductor/internal/common/apperrors"
	"github.com/tansive/conductor/internal/score/compiler"
	"github.com/tansive/conductor/internal/score/parser"
)

var ErrLoad = apperrors.New("unable to load score").SetExitCode(apperrors.ExitCodeInput)

// Load parses every regular file of dir, in name order, and compiles them
// as one namespace. Hidden files are skipped. Subdirectories are an error.
func Load(dir string) (*catalog.Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ErrLoad.MsgErr("unable to read score directory "+dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var files []compiler.File
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path)
		if err != nil {
			return nil, ErrLoad.MsgErr("unable to stat "+path, err)
		}
		if info.IsDir() {
			return nil, ErrLoad.Msgf("%s is a directory; subdirectories are not supported", path)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, ErrLoad.MsgErr("unable to read "+path, err)
		}
		f, err := parseFile(path, string(text))
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return compiler.Compile(files)
}

// LoadSource compiles a single in-memory score file.
func LoadSource(path, text string) (*catalog.Catalog, error) {
	f, err := parseFile(path, text)
	if err != nil {
		return nil, err
	}
	return compiler.Compile([]compiler.File{f})
}

func parseFile(path, text string) (compiler.File, error) {
	stmts, err := parser.Parse(text)
	if err != nil {
		return compiler.File{}, ErrLoad.MsgErr(path+": "+err.Error(), err)
	}
	return compiler.File{Path: path, Statements: stmts}, nil
}
