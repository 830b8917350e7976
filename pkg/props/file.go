package props

import (
	"fmt"
	"os"

	"github.com/magiconair/properties"
)

// Parse reads Java properties syntax from data. Values are kept verbatim:
// ${...} references are resolved by the executor at run time, not here.
func Parse(parent *Props, data []byte) (*Props, error) {
	l := &properties.Loader{
		Encoding:         properties.UTF8,
		DisableExpansion: true,
	}
	raw, err := l.LoadBytes(data)
	if err != nil {
		return nil, err
	}

	p := New(parent)
	for _, k := range raw.Keys() {
		v, _ := raw.Get(k)
		p.Put(k, v)
	}
	return p, nil
}

// LoadFile parses the properties file at path into a bag chained to parent.
// The file is read fully and closed before parsing.
func LoadFile(parent *Props, path string) (*Props, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from the project directory walk
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	p, err := Parse(parent, data)
	if err != nil {
		return nil, err
	}
	p.SetSource(path)
	return p, nil
}
