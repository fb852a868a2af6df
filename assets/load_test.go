package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

const clippyJSON = `{"framesize":[124,93],"overlayCount":1,"animations":{"Wave":{"frames":[{"duration":100,"images":[[0,0]],"sound":"1"}]}}}`

func TestLoadJSONPack(t *testing.T) {
	fsys := fstest.MapFS{
		"Clippy/agent.json":      {Data: []byte(clippyJSON)},
		"Clippy/map.png":         {Data: pngBytes(t, 248, 93)},
		"Clippy/sounds-mp3.json": {Data: []byte(`{"1":"data:audio/mpeg;base64,aGk=","2":"sfx/2.mp3"}`)},
		"Clippy/sounds-ogg.json": {Data: []byte(`{"1":"ignored"}`)},
	}

	a, err := Load(fsys, "Clippy", nil)
	require.NoError(t, err)
	assert.Equal(t, "Clippy", a.Name)
	assert.Equal(t, "Clippy/agent.json", a.Definition)
	assert.Equal(t, []string{"Wave"}, a.Library.Names())
	assert.Equal(t, image.Rect(0, 0, 248, 93), a.Sheet.Bounds())
	assert.Equal(t, "Clippy/sounds-mp3.json", a.SoundFile)
	assert.Equal(t, map[string]string{
		"1": "data:audio/mpeg;base64,aGk=",
		"2": "Clippy/sfx/2.mp3",
	}, a.Sounds)
}

func TestLoadDegradesWithoutSounds(t *testing.T) {
	cases := []struct {
		name  string
		files fstest.MapFS
	}{
		{"missing", fstest.MapFS{}},
		{"malformed", fstest.MapFS{"Clippy/sounds-ogg.json": {Data: []byte(`[1,2`)}}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			c.files["Clippy/agent.json"] = &fstest.MapFile{Data: []byte(clippyJSON)}
			c.files["Clippy/map.png"] = &fstest.MapFile{Data: pngBytes(t, 4, 4)}

			a, err := Load(c.files, "Clippy", nil)
			require.NoError(t, err)
			assert.Empty(t, a.Sounds)
			assert.Empty(t, a.SoundFile)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"NoSheet/agent.json": {Data: []byte(clippyJSON)},
		"BadSheet/agent.json": {Data: []byte(clippyJSON)},
		"BadSheet/map.png":    {Data: []byte("not a png")},
		"BadDef/agent.json":   {Data: []byte(`{"animations": 5}`)},
		"BadDef/map.png":      {Data: pngBytes(t, 4, 4)},
	}

	_, err := Load(fsys, "Nobody", nil)
	assert.ErrorIs(t, err, ErrAgentNotFound)

	_, err = Load(fsys, "../escape", nil)
	assert.ErrorIs(t, err, ErrAgentNotFound)

	_, err = Load(fsys, "NoSheet", nil)
	assert.ErrorIs(t, err, ErrNoSheet)

	_, err = Load(fsys, "BadSheet", nil)
	assert.ErrorIs(t, err, ErrNoSheet)

	_, err = Load(fsys, "BadDef", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAgentNotFound)
	assert.Contains(t, err.Error(), "BadDef/agent.json")
}

func TestBuiltinAgent(t *testing.T) {
	names, err := List(Builtin())
	require.NoError(t, err)
	assert.Contains(t, names, "Blinky")

	a, err := Load(Builtin(), "Blinky", nil)
	require.NoError(t, err)
	require.NoError(t, a.Library.Validate())
	assert.Equal(t, 2, a.Library.OverlayCount)
	assert.True(t, a.Library.Has("IdleBlink"))
	assert.True(t, a.Library.Has("Show"))
	assert.Equal(t, image.Rect(0, 0, 192, 96), a.Sheet.Bounds())
	assert.Equal(t, "Blinky/sounds-wav.json", a.SoundFile)
	assert.Len(t, a.Sounds, 2)
	assert.Contains(t, a.Sounds["1"], "data:audio/wav;base64,")
	assert.Contains(t, a.Sounds["2"], "data:audio/wav;base64,")
}

func TestLayeredFS(t *testing.T) {
	top := fstest.MapFS{
		"Blinky/agent.json": {Data: []byte(clippyJSON)},
		"Merlin/agent.json": {Data: []byte(clippyJSON)},
		"readme.txt":        {Data: []byte("x")},
	}
	bottom := fstest.MapFS{
		"Blinky/agent.json": {Data: []byte(`{}`)},
		"Blinky/map.png":    {Data: []byte("png")},
		"Rover/agent.yaml":  {Data: []byte(`{}`)},
	}
	l := Layered(top, bottom)

	data, err := fs.ReadFile(l, "Blinky/agent.json")
	require.NoError(t, err)
	assert.Equal(t, clippyJSON, string(data), "earlier layers win")

	data, err = fs.ReadFile(l, "Blinky/map.png")
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	_, err = fs.ReadFile(l, "Nope/agent.json")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	names, err := List(l)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blinky", "Merlin", "Rover"}, names)
}

func TestOpenFallsBackToBuiltin(t *testing.T) {
	names, err := List(Open(""))
	require.NoError(t, err)
	assert.Contains(t, names, "Blinky")

	names, err = List(Open(t.TempDir() + "/missing"))
	require.NoError(t, err)
	assert.Contains(t, names, "Blinky")

	names, err = List(Open(t.TempDir()))
	require.NoError(t, err)
	assert.Contains(t, names, "Blinky")
}
