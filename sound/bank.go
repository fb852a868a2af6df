// Package sound keeps an agent's sound effects decoded in memory and plays
// them by id. Unknown ids are ignored so a missing sound never interrupts
// playback.
package sound

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// SampleRate is the rate the viewer creates its audio context with.
const SampleRate = 44100

var ErrNoContext = errors.New("sound: no audio context")

// Option configures a Bank.
type Option func(*Bank)

// WithFS resolves sound sources that are paths rather than data URIs.
func WithFS(fsys fs.FS) Option {
	return func(b *Bank) { b.fsys = fsys }
}

// WithVolume sets the initial playback volume in [0,1].
func WithVolume(v float64) Option {
	return func(b *Bank) { b.volume = clampVolume(v) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bank) {
		if l != nil {
			b.log = l
		}
	}
}

// Bank maps sound ids to decoded PCM and lazily created players.
type Bank struct {
	ctx     *audio.Context
	fsys    fs.FS
	pcm     map[string][]byte
	players map[string]*audio.Player
	volume  float64
	log     *slog.Logger
}

// NewBank creates an empty bank on ctx.
func NewBank(ctx *audio.Context, opts ...Option) *Bank {
	b := &Bank{
		ctx:     ctx,
		pcm:     make(map[string][]byte),
		players: make(map[string]*audio.Player),
		volume:  1,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// LoadAll loads every source and returns how many decoded. Failures are
// logged and skipped.
func (b *Bank) LoadAll(sources map[string]string) int {
	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	loaded := 0
	for _, id := range ids {
		if err := b.Load(id, sources[id]); err != nil {
			b.log.Warn("skipping sound", "id", id, "err", err)
			continue
		}
		loaded++
	}
	return loaded
}

// Load decodes src and stores it under id. src is either a data URI or a path
// inside the bank's file system.
func (b *Bank) Load(id, src string) error {
	if b.ctx == nil {
		return ErrNoContext
	}

	pcm, err := b.decodeSource(b.ctx.SampleRate(), src)
	if err != nil {
		return fmt.Errorf("sound: load %s: %w", id, err)
	}

	if p, ok := b.players[id]; ok {
		_ = p.Close()
		delete(b.players, id)
	}
	b.pcm[id] = pcm
	return nil
}

// decodeSource reads src and decodes it to PCM at sampleRate.
func (b *Bank) decodeSource(sampleRate int, src string) ([]byte, error) {
	data, format, err := b.read(src)
	if err != nil {
		return nil, err
	}
	return decode(sampleRate, format, data)
}

func (b *Bank) read(src string) ([]byte, Format, error) {
	mime, data, err := parseDataURI(src)
	if err == nil {
		return data, formatFromMIME(mime), nil
	}
	if !errors.Is(err, errNotDataURI) {
		return nil, FormatUnknown, err
	}
	if b.fsys == nil {
		return nil, FormatUnknown, fmt.Errorf("no file system for %q", src)
	}
	data, err = fs.ReadFile(b.fsys, strings.TrimPrefix(src, "/"))
	if err != nil {
		return nil, FormatUnknown, err
	}
	return data, formatFromPath(src), nil
}

func decode(sampleRate int, format Format, data []byte) ([]byte, error) {
	reader := bytes.NewReader(data)

	var stream io.Reader
	var err error
	switch format {
	case FormatMP3:
		stream, err = mp3.DecodeWithSampleRate(sampleRate, reader)
	case FormatOgg:
		stream, err = vorbis.DecodeWithSampleRate(sampleRate, reader)
	case FormatWAV:
		stream, err = wav.DecodeWithSampleRate(sampleRate, reader)
	default:
		return nil, fmt.Errorf("unsupported audio format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}

	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read decoded %s: %w", format, err)
	}
	return pcm, nil
}

// Has reports whether id is loaded.
func (b *Bank) Has(id string) bool {
	if b == nil {
		return false
	}
	_, ok := b.pcm[id]
	return ok
}

// IDs returns the loaded sound ids, sorted.
func (b *Bank) IDs() []string {
	if b == nil {
		return nil
	}
	ids := make([]string, 0, len(b.pcm))
	for id := range b.pcm {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Volume returns the playback volume.
func (b *Bank) Volume() float64 {
	return b.volume
}

// SetVolume changes the volume of future and playing sounds.
func (b *Bank) SetVolume(v float64) {
	if b == nil {
		return
	}
	b.volume = clampVolume(v)
	for _, p := range b.players {
		p.SetVolume(b.volume)
	}
}

// Play starts the sound from the beginning unless it is already playing.
func (b *Bank) Play(id string) {
	if b == nil {
		return
	}
	pcm, ok := b.pcm[id]
	if !ok {
		b.log.Debug("unknown sound", "id", id)
		return
	}
	if b.ctx == nil || b.volume <= 0 {
		return
	}

	player, ok := b.players[id]
	if !ok {
		player = b.ctx.NewPlayerFromBytes(pcm)
		b.players[id] = player
	}
	if player.IsPlaying() {
		return
	}
	player.SetVolume(b.volume)
	if err := player.Rewind(); err != nil {
		b.log.Warn("rewind sound", "id", id, "err", err)
		return
	}
	player.Play()
}

// Close releases every player.
func (b *Bank) Close() error {
	if b == nil {
		return nil
	}
	var errs []error
	for id, p := range b.players {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("sound: close %s: %w", id, err))
		}
		delete(b.players, id)
	}
	return errors.Join(errs...)
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
