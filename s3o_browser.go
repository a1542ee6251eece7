package main

import (
	"flag"
	"log"

	"github.com/ChrisFloofyKitsune/s3o-browser/config"
	"github.com/ChrisFloofyKitsune/s3o-browser/web"
)

func main() {
	var addr, dir, texDir, configPath, encoding string
	var cacheSize int
	flag.StringVar(&addr, "i", "", "Address of server")
	flag.StringVar(&dir, "dir", "", "Path to folder with .s3o models")
	flag.StringVar(&texDir, "texdir", "", "Path to folder with unit textures (defaults to -dir)")
	flag.StringVar(&configPath, "config", "s3o_browser.yaml", "Path to yaml config file")
	flag.StringVar(&encoding, "encoding", "", "Code page for piece names and texture paths")
	flag.IntVar(&cacheSize, "cachesize", 0, "Simulated vertex cache size used by optimization")
	flag.Parse()

	s, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	// flags win over the config file
	if addr != "" {
		s.Addr = addr
	}
	if dir != "" {
		s.ModelsDir = dir
	}
	if texDir != "" {
		s.TexturesDir = texDir
	}
	if encoding != "" {
		s.Encoding = encoding
	}
	if cacheSize != 0 {
		s.VertexCacheSize = cacheSize
	}

	if s.ModelsDir == "" {
		flag.PrintDefaults()
		return
	}
	if s.TexturesDir == "" {
		s.TexturesDir = s.ModelsDir
	}

	if err := config.Apply(s); err != nil {
		log.Fatal(err)
	}

	if err := web.StartServer(s.Addr, s.ModelsDir, "web"); err != nil {
		log.Fatal(err)
	}
}
