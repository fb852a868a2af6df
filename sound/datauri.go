package sound

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

var errNotDataURI = errors.New("not a data URI")

// parseDataURI splits a data URI of the form data:<mime>[;base64],<payload>.
func parseDataURI(uri string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errNotDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URI without payload")
	}

	params := strings.Split(meta, ";")
	mime = strings.ToLower(strings.TrimSpace(params[0]))
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("decode base64 payload: %w", err)
		}
		return mime, data, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("unescape payload: %w", err)
	}
	return mime, []byte(unescaped), nil
}

// Format is an encoded audio container.
type Format string

const (
	FormatUnknown Format = ""
	FormatMP3     Format = "mp3"
	FormatOgg     Format = "ogg"
	FormatWAV     Format = "wav"
)

func formatFromMIME(mime string) Format {
	switch mime {
	case "audio/mpeg", "audio/mp3":
		return FormatMP3
	case "audio/ogg", "audio/vorbis", "application/ogg":
		return FormatOgg
	case "audio/wav", "audio/x-wav", "audio/wave":
		return FormatWAV
	default:
		return FormatUnknown
	}
}

func formatFromPath(p string) Format {
	switch strings.ToLower(path.Ext(p)) {
	case ".mp3":
		return FormatMP3
	case ".ogg":
		return FormatOgg
	case ".wav":
		return FormatWAV
	default:
		return FormatUnknown
	}
}
