package servers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Package servers loads named server profiles (LAN, public tunnel, ...) so the
// client can switch base URLs without a rebuild.

// configFile represents the structure of the servers configuration file.
type configFile struct {
	Servers []Server `json:"servers" yaml:"servers"`
}

// Server is a single named base URL.
type Server struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	BaseURL string `json:"base_url" yaml:"base_url"`
	Default bool   `json:"default" yaml:"default"`
}

// Registry holds the profiles loaded from a servers file.
type Registry struct {
	servers []Server
	idx     map[string]Server
}

// LoadRegistry loads the servers registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("servers file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open servers file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read servers file: %w", err)
	}

	fileReg, err := parseServers(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Servers) == 0 {
		return nil, errors.New("servers file contains no servers entries")
	}

	reg := &Registry{
		servers: make([]Server, len(fileReg.Servers)),
		idx:     make(map[string]Server, len(fileReg.Servers)),
	}
	defaults := 0
	for i := range fileReg.Servers {
		s := sanitizeServer(fileReg.Servers[i])
		if err := validateServer(s); err != nil {
			return nil, fmt.Errorf("servers[%d]: %w", i, err)
		}
		if _, exists := reg.idx[s.ID]; exists {
			return nil, fmt.Errorf("duplicate server id %q", s.ID)
		}
		if s.Default {
			defaults++
		}
		reg.servers[i] = s
		reg.idx[s.ID] = s
	}
	if defaults > 1 {
		return nil, errors.New("more than one server marked default")
	}

	return reg, nil
}

func parseServers(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var cfg configFile
		if err := d.fn(data, &cfg); err == nil {
			return cfg, nil
		}
	}

	return configFile{}, errors.New("servers file format not recognized (expected YAML or JSON)")
}

func sanitizeServer(s Server) Server {
	s.ID = strings.ToLower(strings.TrimSpace(s.ID))
	s.Name = strings.TrimSpace(s.Name)
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if s.Name == "" {
		s.Name = s.ID
	}
	return s
}

func validateServer(s Server) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.BaseURL == "" {
		return fmt.Errorf("base_url is required for server %q", s.ID)
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url for server %q must be an absolute http(s) URL", s.ID)
	}
	return nil
}

// ByID returns the server with the given id.
func (r *Registry) ByID(id string) (Server, bool) {
	if r == nil {
		return Server{}, false
	}
	s, ok := r.idx[strings.ToLower(strings.TrimSpace(id))]
	return s, ok
}

// All returns all configured servers in file order.
func (r *Registry) All() []Server {
	if r == nil {
		return nil
	}
	out := make([]Server, len(r.servers))
	copy(out, r.servers)
	return out
}

// Default returns the server marked default, or the first one.
func (r *Registry) Default() (Server, bool) {
	if r == nil || len(r.servers) == 0 {
		return Server{}, false
	}
	for _, s := range r.servers {
		if s.Default {
			return s, true
		}
	}
	return r.servers[0], true
}

// ResolveBaseURL picks the base URL for a run: the named profile when id is set,
// the file's default profile when only a file is given, else fallback.
func ResolveBaseURL(path, id, fallback string) (string, error) {
	path = strings.TrimSpace(path)
	id = strings.TrimSpace(id)
	if path == "" {
		if id != "" {
			return "", fmt.Errorf("server %q selected but no servers file configured", id)
		}
		return fallback, nil
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		return "", err
	}
	if id == "" {
		s, _ := reg.Default()
		return s.BaseURL, nil
	}
	s, ok := reg.ByID(id)
	if !ok {
		return "", fmt.Errorf("unknown server %q", id)
	}
	return s.BaseURL, nil
}
