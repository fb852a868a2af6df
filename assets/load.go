// Package assets loads agent packs.
//
// A pack is a directory named after the agent holding the definition
// (agent.json or agent.yaml), the sprite sheet (map.png) and optionally a
// sound manifest (sounds-mp3.json, sounds-ogg.json or sounds-wav.json)
// mapping sound ids to data URIs or pack-relative audio files.
package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"sort"

	"github.com/milk9111/officeagent/agent"
)

const SheetFile = "map.png"

// DefinitionFiles are tried in order.
var DefinitionFiles = []string{"agent.json", "agent.yaml", "agent.yml"}

// SoundFiles are tried in order.
var SoundFiles = []string{"sounds-mp3.json", "sounds-ogg.json", "sounds-wav.json"}

var (
	ErrAgentNotFound = errors.New("assets: agent not found")
	ErrNoSheet       = errors.New("assets: sprite sheet missing")
)

// Agent is a loaded agent pack.
type Agent struct {
	Name       string
	Definition string
	Library    *agent.Library
	Sheet      image.Image
	Sounds     map[string]string
	SoundFile  string
}

// Load reads the pack for name from fsys. A missing or unreadable sound
// manifest is logged and yields an agent without sounds.
func Load(fsys fs.FS, name string, log *slog.Logger) (*Agent, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if name == "" || !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: invalid name %q", ErrAgentNotFound, name)
	}

	def, data, err := readFirst(fsys, name, DefinitionFiles)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
		}
		return nil, fmt.Errorf("assets: read %s definition: %w", name, err)
	}
	lib, err := agent.Parse(def, data)
	if err != nil {
		return nil, fmt.Errorf("assets: %s: %w", def, err)
	}
	if err := lib.Validate(); err != nil {
		log.Debug("agent definition has problems", "agent", name, "err", err)
	}

	sheet, err := LoadImage(fsys, path.Join(name, SheetFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoSheet, name, err)
	}

	a := &Agent{
		Name:       name,
		Definition: def,
		Library:    lib,
		Sheet:      sheet,
		Sounds:     map[string]string{},
	}

	soundFile, soundData, err := readFirst(fsys, name, SoundFiles)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn("agent has no sounds", "agent", name)
	case err != nil:
		log.Warn("unable to read sounds", "agent", name, "err", err)
	default:
		sounds, err := parseSounds(soundData)
		if err != nil {
			log.Warn("unable to parse sounds", "file", soundFile, "err", err)
			break
		}
		a.Sounds = resolveSoundPaths(name, sounds)
		a.SoundFile = soundFile
	}

	log.Info("agent loaded", "agent", name, "definition", def, "animations", len(lib.Animations), "sounds", len(a.Sounds))
	return a, nil
}

// LoadImage decodes an image from fsys.
func LoadImage(fsys fs.FS, p string) (image.Image, error) {
	b, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	return img, nil
}

// List returns the names of every agent pack in fsys.
func List(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("assets: list agents: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if def, _, err := readFirst(fsys, e.Name(), DefinitionFiles); err == nil && def != "" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func readFirst(fsys fs.FS, dir string, files []string) (string, []byte, error) {
	var firstErr error
	for _, f := range files {
		p := path.Join(dir, f)
		data, err := fs.ReadFile(fsys, p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return "", nil, firstErr
	}
	return "", nil, fs.ErrNotExist
}

func parseSounds(data []byte) (map[string]string, error) {
	var sounds map[string]string
	if err := json.Unmarshal(data, &sounds); err != nil {
		return nil, err
	}
	return sounds, nil
}

// resolveSoundPaths makes file sources relative to the pack root so they can
// be read from the same file system. Data URIs are kept as they are.
func resolveSoundPaths(dir string, sounds map[string]string) map[string]string {
	out := make(map[string]string, len(sounds))
	for id, src := range sounds {
		if isDataURI(src) || path.IsAbs(src) {
			out[id] = src
			continue
		}
		out[id] = path.Join(dir, src)
	}
	return out
}

func isDataURI(s string) bool {
	return len(s) >= 5 && s[:5] == "data:"
}
