package registry

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type registryFile struct {
	Nav    []NavEntry   `yaml:"nav"`
	Routes []RouteEntry `yaml:"routes"`
}

// LoadFile reads the nav and route catalogues from a YAML file. Decoding
// is strict: an unknown field is a configuration error, not a silently
// dropped one.
func LoadFile(path string) (*Nav, *Routes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "[registry.LoadFile]")
	}
	defer func() {
		_ = f.Close()
	}()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var file registryFile
	if err := dec.Decode(&file); err != nil {
		return nil, nil, errors.Wrapf(err, "[registry.LoadFile] decoding %s", path)
	}

	nav := make([]*NavEntry, 0, len(file.Nav))
	for i := range file.Nav {
		nav = append(nav, &file.Nav[i])
	}
	routes := make([]*RouteEntry, 0, len(file.Routes))
	for i := range file.Routes {
		routes = append(routes, &file.Routes[i])
	}
	return NewNav(nav...), NewRoutes(routes...), nil
}
