package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Settings are process-wide knobs shared by the web server and the
// batch tools. Values come from defaults < yaml file < command flags.
type Settings struct {
	Addr            string `yaml:"addr"`
	ModelsDir       string `yaml:"models_dir"`
	TexturesDir     string `yaml:"textures_dir"`
	Encoding        string `yaml:"encoding"`
	VertexCacheSize int    `yaml:"vertex_cache_size"`
}

var current = Default()

func Default() Settings {
	return Settings{
		Addr:            ":8000",
		Encoding:        "Windows 1252",
		VertexCacheSize: 32,
	}
}

// Load reads settings from a yaml file on top of the defaults.
// A missing file is not an error, only an unreadable or invalid one.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, errors.Wrapf(err, "Failed to read config %q", path)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, errors.Wrapf(err, "Failed to parse config %q", path)
	}
	return s, nil
}

// Apply installs the settings as the process globals.
func Apply(s Settings) error {
	if s.VertexCacheSize < 4 {
		return errors.Errorf("vertex_cache_size %d is too small", s.VertexCacheSize)
	}
	if err := SetEncoding(s.Encoding); err != nil {
		return err
	}
	current = s
	return nil
}

func Get() Settings {
	return current
}

func VertexCacheSize() int {
	return current.VertexCacheSize
}

func TexturesDir() string {
	return current.TexturesDir
}
