package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// relative to a server install directory
const serverLogSubpath = "ShooterGame/Saved/Logs/ShooterGame.log"

type ServersFile struct {
	Servers []Server `yaml:"servers"`
}

type Server struct {
	Name       string `yaml:"name"`
	InstallDir string `yaml:"install_dir"`
	LogPath    string `yaml:"log_path"`
	Enabled    *bool  `yaml:"enabled"`
	RCON       RCON   `yaml:"rcon"`
}

type RCON struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
}

func (s Server) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// LoadServers reads the server list. Relative paths are resolved against the
// file's directory; a server without log_path uses its install directory,
// falling back to the platform default install location.
func LoadServers(path string) ([]Server, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading servers file: %w", err)
	}
	var file ServersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing servers file: %w", err)
	}

	base := filepath.Dir(path)
	seen := map[string]struct{}{}
	servers := make([]Server, 0, len(file.Servers))
	for i, srv := range file.Servers {
		srv.Name = strings.TrimSpace(srv.Name)
		if srv.Name == "" {
			return nil, fmt.Errorf("server %d: name is required", i+1)
		}
		if _, dup := seen[srv.Name]; dup {
			return nil, fmt.Errorf("server %q: duplicate name", srv.Name)
		}
		seen[srv.Name] = struct{}{}

		srv.LogPath = strings.TrimSpace(srv.LogPath)
		srv.InstallDir = strings.TrimSpace(srv.InstallDir)
		if srv.LogPath == "" {
			dir := srv.InstallDir
			if dir == "" {
				dir = DefaultInstallDir()
			}
			if dir == "" {
				return nil, fmt.Errorf("server %q: log_path or install_dir is required", srv.Name)
			}
			srv.LogPath = filepath.Join(resolve(base, dir), filepath.FromSlash(serverLogSubpath))
		} else {
			srv.LogPath = resolve(base, srv.LogPath)
		}
		servers = append(servers, srv)
	}
	if len(servers) == 0 {
		return nil, errors.New("servers file lists no servers")
	}
	return servers, nil
}

func resolve(base string, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
