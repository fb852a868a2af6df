package assets

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"sort"
)

//go:embed agents
var agentsFS embed.FS

// Builtin returns the agents compiled into the binary.
func Builtin() fs.FS {
	sub, err := fs.Sub(agentsFS, "agents")
	if err != nil {
		panic(err)
	}
	return sub
}

// Open returns a file system that reads from dir first and falls back to the
// built-in agents. An empty or missing dir yields the built-in agents only.
func Open(dir string) fs.FS {
	if dir == "" {
		return Builtin()
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return Builtin()
	}
	return Layered(os.DirFS(dir), Builtin())
}

// Layered returns a file system that resolves each name against layers in
// order. Directory listings are merged, earlier layers winning on name
// clashes.
func Layered(layers ...fs.FS) fs.FS {
	return layeredFS(layers)
}

type layeredFS []fs.FS

func (l layeredFS) Open(name string) (fs.File, error) {
	var firstErr error
	for _, layer := range l {
		f, err := layer.Open(name)
		if err == nil {
			return f, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return nil, firstErr
}

func (l layeredFS) ReadDir(name string) ([]fs.DirEntry, error) {
	seen := make(map[string]bool)
	var out []fs.DirEntry
	found := false
	for _, layer := range l {
		entries, err := fs.ReadDir(layer, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		found = true
		for _, e := range entries {
			if seen[e.Name()] {
				continue
			}
			seen[e.Name()] = true
			out = append(out, e)
		}
	}
	if !found {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}
