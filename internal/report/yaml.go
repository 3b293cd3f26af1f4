package report

import (
	"io"

	"gopkg.in/yaml.v3"
)

type yamlDocument struct {
	Endpoints []yamlEndpoint `yaml:"endpoints"`
}

type yamlEndpoint struct {
	Label      string          `yaml:"label"`
	Path       string          `yaml:"path"`
	Peer       string          `yaml:"peer"`
	State      string          `yaml:"state"`
	Error      string          `yaml:"error,omitempty"`
	Interfaces []yamlInterface `yaml:"interfaces"`
	Missing    []yamlMissing   `yaml:"missing,omitempty"`
}

type yamlInterface struct {
	Name    string `yaml:"name"`
	Version uint32 `yaml:"version"`
}

type yamlMissing struct {
	Name     string  `yaml:"name"`
	Required uint32  `yaml:"required"`
	Owned    *uint32 `yaml:"owned,omitempty"`
}

func WriteYAML(w io.Writer, rep Report) error {
	doc := yamlDocument{Endpoints: make([]yamlEndpoint, 0, len(rep.Results))}
	for i, res := range rep.Results {
		ep := yamlEndpoint{
			Label:      res.Label,
			Path:       res.Path,
			Peer:       res.PeerName,
			State:      res.State.String(),
			Interfaces: make([]yamlInterface, 0, len(res.Interfaces)),
		}
		if res.Err != nil {
			ep.Error = res.Err.Error()
		}
		for _, name := range res.Interfaces.Names() {
			ep.Interfaces = append(ep.Interfaces, yamlInterface{Name: name, Version: res.Interfaces[name]})
		}
		for _, m := range rep.missingAt(i) {
			ym := yamlMissing{Name: m.Name, Required: m.Required}
			if m.HasOwned {
				owned := m.Owned
				ym.Owned = &owned
			}
			ep.Missing = append(ep.Missing, ym)
		}
		doc.Endpoints = append(doc.Endpoints, ep)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
