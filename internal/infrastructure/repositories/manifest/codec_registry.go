package manifest

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

var ErrUnsupportedFormat = errors.New("unsupported manifest format")

// Decoder parses raw manifest bytes into an editable document.
type Decoder func(data []byte) (Document, error)

// CodecRegistry maps file extensions to manifest decoders.
type CodecRegistry struct {
	decoders map[string]Decoder
}

// NewCodecRegistry creates an empty codec registry.
func NewCodecRegistry() *CodecRegistry {
	return &CodecRegistry{
		decoders: make(map[string]Decoder),
	}
}

// NewDefaultCodecRegistry registers the JSON and YAML codecs.
func NewDefaultCodecRegistry() *CodecRegistry {
	registry := NewCodecRegistry()
	registry.Register(".json", decodeJSON)
	registry.Register(".yaml", decodeYAML)
	registry.Register(".yml", decodeYAML)
	return registry
}

// Register adds a decoder under the given extension (e.g. ".json").
func (r *CodecRegistry) Register(extension string, decoder Decoder) {
	r.decoders[strings.ToLower(extension)] = decoder
}

// Get returns the decoder for the path's extension.
func (r *CodecRegistry) Get(path string) (Decoder, error) {
	extension := strings.ToLower(filepath.Ext(path))
	decoder, ok := r.decoders[extension]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q (known: %v)", path, lo.Keys(r.decoders))
	}
	return decoder, nil
}
