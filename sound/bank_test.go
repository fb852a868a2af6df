package sound

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/milk9111/officeagent/assets"
	"github.com/milk9111/officeagent/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wavBytes builds a 16-bit stereo PCM WAV at SampleRate with the given number
// of sample frames.
func wavBytes(frames int) []byte {
	const channels, bits = 2, 16
	dataLen := frames * channels * bits / 8

	var buf bytes.Buffer
	w := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }
	buf.WriteString("RIFF")
	w(uint32(36 + dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	w(uint32(16))
	w(uint16(1))
	w(uint16(channels))
	w(uint32(SampleRate))
	w(uint32(SampleRate * channels * bits / 8))
	w(uint16(channels * bits / 8))
	w(uint16(bits))
	buf.WriteString("data")
	w(uint32(dataLen))
	for i := range frames * channels {
		w(int16(i * 100))
	}
	return buf.Bytes()
}

func wavURI(data []byte) string {
	return "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(data)
}

func TestParseDataURI(t *testing.T) {
	cases := []struct {
		name     string
		uri      string
		wantMIME string
		wantData string
		wantErr  bool
	}{
		{"base64", "data:audio/mpeg;base64,aGVsbG8=", "audio/mpeg", "hello", false},
		{"base64_with_params", "data:audio/ogg;codecs=vorbis;base64,aGk=", "audio/ogg", "hi", false},
		{"percent_encoded", "data:audio/wav,a%20b", "audio/wav", "a b", false},
		{"upper_case_mime", "data:Audio/MPEG;base64,aGk=", "audio/mpeg", "hi", false},
		{"bad_base64", "data:audio/mpeg;base64,!!!", "", "", true},
		{"missing_payload", "data:audio/mpeg;base64", "", "", true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			mime, data, err := parseDataURI(c.uri)
			if c.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.wantMIME, mime)
			assert.Equal(t, c.wantData, string(data))
		})
	}

	_, _, err := parseDataURI("sounds/1.mp3")
	assert.ErrorIs(t, err, errNotDataURI)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, FormatMP3, formatFromMIME("audio/mpeg"))
	assert.Equal(t, FormatOgg, formatFromMIME("audio/ogg"))
	assert.Equal(t, FormatWAV, formatFromMIME("audio/x-wav"))
	assert.Equal(t, FormatUnknown, formatFromMIME("text/plain"))

	assert.Equal(t, FormatMP3, formatFromPath("a/b/1.MP3"))
	assert.Equal(t, FormatOgg, formatFromPath("1.ogg"))
	assert.Equal(t, FormatWAV, formatFromPath("1.wav"))
	assert.Equal(t, FormatUnknown, formatFromPath("1.flac"))
}

func TestDecodeRejectsUnknownFormat(t *testing.T) {
	_, err := decode(SampleRate, FormatUnknown, []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestBankWithoutContext(t *testing.T) {
	b := NewBank(nil, WithVolume(3))
	assert.Equal(t, 1.0, b.Volume())

	err := b.Load("1", "data:audio/mpeg;base64,aGk=")
	assert.ErrorIs(t, err, ErrNoContext)
	assert.Zero(t, b.LoadAll(map[string]string{"1": "x", "2": "y"}))
	assert.False(t, b.Has("1"))
	assert.Empty(t, b.IDs())

	assert.NotPanics(t, func() { b.Play("1") })
	assert.NoError(t, b.Close())

	b.SetVolume(-1)
	assert.Equal(t, 0.0, b.Volume())
}

func TestNilBankIsSafe(t *testing.T) {
	var b *Bank
	assert.NotPanics(t, func() {
		b.Play("1")
		b.SetVolume(0.5)
	})
	assert.False(t, b.Has("1"))
	assert.Nil(t, b.IDs())
	assert.NoError(t, b.Close())
}

func TestDecodeWAV(t *testing.T) {
	pcm, err := decode(SampleRate, FormatWAV, wavBytes(4))
	require.NoError(t, err)
	assert.Len(t, pcm, 16)

	_, err = decode(SampleRate, FormatWAV, []byte("definitely not a wav file"))
	assert.ErrorContains(t, err, "decode wav")
}

func TestDecodeSource(t *testing.T) {
	b := NewBank(nil, WithFS(fstest.MapFS{"Blinky/sfx/1.wav": {Data: wavBytes(8)}}))

	pcm, err := b.decodeSource(SampleRate, wavURI(wavBytes(4)))
	require.NoError(t, err)
	assert.Len(t, pcm, 16)

	pcm, err = b.decodeSource(SampleRate, "Blinky/sfx/1.wav")
	require.NoError(t, err)
	assert.Len(t, pcm, 32)

	_, err = b.decodeSource(SampleRate, wavURI([]byte("garbage")))
	assert.Error(t, err)

	_, err = b.decodeSource(SampleRate, "Blinky/sfx/missing.wav")
	assert.Error(t, err)
}

func TestBuiltinAgentSoundsDecode(t *testing.T) {
	a, err := assets.Load(assets.Builtin(), "Blinky", nil)
	require.NoError(t, err)
	require.NotEmpty(t, a.Sounds)

	b := NewBank(nil)
	for id, src := range a.Sounds {
		pcm, err := b.decodeSource(SampleRate, src)
		require.NoError(t, err, id)
		assert.NotEmpty(t, pcm, id)
	}
}

func TestPlayIgnoresUnknownID(t *testing.T) {
	var buf bytes.Buffer
	b := NewBank(nil, WithLogger(logging.NewWriter(&buf, slog.LevelDebug)))
	b.pcm["1"] = []byte{0, 0, 0, 0}

	assert.NotPanics(t, func() { b.Play("2") })
	assert.Contains(t, buf.String(), "unknown sound")
	assert.Contains(t, buf.String(), "id=2")

	buf.Reset()
	assert.NotPanics(t, func() { b.Play("1") })
	assert.Empty(t, buf.String())
	assert.Equal(t, []string{"1"}, b.IDs())
}
