package adapters

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a patch document from a YAML file. Decoding is strict:
// a misspelled field is rejected instead of silently ignored, which is
// how historical alias fields accumulated in the first place.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "[adapters.LoadFile]")
	}
	defer func() {
		_ = f.Close()
	}()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "[adapters.LoadFile] decoding %s", path)
	}
	return &cfg, nil
}
