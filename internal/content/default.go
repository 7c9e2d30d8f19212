package content

import (
	"bytes"
	_ "embed"
	"sync"
)

// DefaultSource labels the embedded script in logs and errors.
const DefaultSource = "embedded:default_script.yaml"

//go:embed default_script.yaml
var defaultScript []byte

var loadDefault = sync.OnceValues(func() (*Library, error) {
	return Decode(bytes.NewReader(defaultScript), FormatYAML, WithSource(DefaultSource))
})

// Default returns the embedded script library, loading it on first use.
func Default() (*Library, error) {
	return loadDefault()
}
