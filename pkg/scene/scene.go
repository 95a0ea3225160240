// Package scene loads host graphs from scene description files.
//
// A scene describes one playable graph: its outputs, its playables and the
// weighted input ports that connect them. Scenes are written in YAML, TOML
// or JSON:
//
//	name: locomotion
//	outputs:
//	  - name: Animation
//	    type: AnimationPlayableOutput
//	    source: blend
//	playables:
//	  - id: blend
//	    type: AnimationMixerPlayable
//	    inputs:
//	      - {source: walk, weight: 0.3}
//	      - {source: run, weight: 0.7}
//	  - id: walk
//	    type: AnimationClipPlayable
//	  - id: run
//	    type: AnimationClipPlayable
//
// An empty source leaves an output or port disconnected. Cycles and shared
// inputs are accepted, since live host graphs can contain both. Entities
// marked destroyed are built and then invalidated, which reproduces the
// stale handles a running host hands out.
//
// [Build] turns a description into a [memory.Graph]; [Watcher] keeps a
// roster in sync with a directory of scene files.
package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/host/memory"
)

// Format names a scene encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatOf returns the encoding implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported scene extension %q", filepath.Ext(path))
}

// Description is a decoded scene.
type Description struct {
	Name      string     `yaml:"name" toml:"name" json:"name"`
	Destroyed bool       `yaml:"destroyed,omitempty" toml:"destroyed,omitempty" json:"destroyed,omitempty"`
	Outputs   []Output   `yaml:"outputs" toml:"outputs" json:"outputs"`
	Playables []Playable `yaml:"playables" toml:"playables" json:"playables"`
}

// Output describes one output slot.
type Output struct {
	Name      string `yaml:"name" toml:"name" json:"name"`
	Type      string `yaml:"type" toml:"type" json:"type"`
	Source    string `yaml:"source,omitempty" toml:"source,omitempty" json:"source,omitempty"`
	Destroyed bool   `yaml:"destroyed,omitempty" toml:"destroyed,omitempty" json:"destroyed,omitempty"`
}

// Playable describes one playable and its input ports in port order.
type Playable struct {
	ID        string  `yaml:"id" toml:"id" json:"id"`
	Type      string  `yaml:"type" toml:"type" json:"type"`
	Inputs    []Input `yaml:"inputs,omitempty" toml:"inputs,omitempty" json:"inputs,omitempty"`
	Destroyed bool    `yaml:"destroyed,omitempty" toml:"destroyed,omitempty" json:"destroyed,omitempty"`
}

// Input is one input port. A nil Weight means 1.
type Input struct {
	Source string   `yaml:"source,omitempty" toml:"source,omitempty" json:"source,omitempty"`
	Weight *float64 `yaml:"weight,omitempty" toml:"weight,omitempty" json:"weight,omitempty"`
}

func (in Input) weight() float64 {
	if in.Weight == nil {
		return 1
	}
	return *in.Weight
}

// Decode parses a description.
func Decode(data []byte, format Format) (*Description, error) {
	var d Description
	var err error
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&d)
	case FormatTOML:
		var md toml.MetaData
		md, err = toml.Decode(string(data), &d)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = fmt.Errorf("unknown key %q", undecoded[0].String())
			}
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&d)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported scene format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode %s scene", format)
	}
	return &d, nil
}

// Load reads, decodes and builds the scene at path. Scenes without a name
// are named after the file.
func Load(path string) (*memory.Graph, error) {
	if err := errors.ValidateSceneFilename(filepath.Base(path)); err != nil {
		return nil, err
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read scene")
	}
	d, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if d.Name == "" {
		base := filepath.Base(path)
		d.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	g, err := Build(d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return g, nil
}

// Validate checks names, identifiers, references and weights.
func (d *Description) Validate() error {
	if err := errors.ValidateName(d.Name); err != nil {
		return err
	}
	ids := make(map[string]bool, len(d.Playables))
	for _, p := range d.Playables {
		if err := errors.ValidateEntityID(p.ID); err != nil {
			return err
		}
		if ids[p.ID] {
			return errors.New(errors.ErrCodeInvalidScene, "duplicate playable id %q", p.ID)
		}
		ids[p.ID] = true
	}
	for _, o := range d.Outputs {
		if err := errors.ValidateName(o.Name); err != nil {
			return err
		}
		if o.Source != "" && !ids[o.Source] {
			return errors.New(errors.ErrCodeInvalidScene, "output %q: unknown source %q", o.Name, o.Source)
		}
	}
	for _, p := range d.Playables {
		for i, in := range p.Inputs {
			if in.Source != "" && !ids[in.Source] {
				return errors.New(errors.ErrCodeInvalidScene, "playable %q port %d: unknown source %q", p.ID, i, in.Source)
			}
			if w := in.weight(); !(w >= 0 && w <= 1) {
				return errors.New(errors.ErrCodeInvalidScene, "playable %q port %d: weight %v outside [0,1]", p.ID, i, w)
			}
		}
	}
	return nil
}

// Build validates d and constructs the host graph it describes.
func Build(d *Description) (*memory.Graph, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	g := memory.New(d.Name)
	byID := make(map[string]*memory.Playable, len(d.Playables))
	for _, p := range d.Playables {
		byID[p.ID] = g.AddPlayable(p.ID, p.Type, len(p.Inputs))
	}
	for _, p := range d.Playables {
		dst := byID[p.ID]
		for i, in := range p.Inputs {
			var err error
			if in.Source == "" {
				err = g.SetInputWeight(dst, i, in.weight())
			} else {
				err = g.Connect(dst, i, byID[in.Source], in.weight())
			}
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "playable %q port %d", p.ID, i)
			}
		}
	}

	var destroyed []*memory.Output
	for _, o := range d.Outputs {
		out := g.AddOutput(o.Name, o.Type)
		if o.Source != "" {
			if err := g.SetSource(out, byID[o.Source]); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "output %q", o.Name)
			}
		}
		if o.Destroyed {
			destroyed = append(destroyed, out)
		}
	}

	for _, p := range d.Playables {
		if p.Destroyed {
			g.DestroyPlayable(byID[p.ID])
		}
	}
	for _, o := range destroyed {
		g.DestroyOutput(o)
	}
	if d.Destroyed {
		g.Destroy()
	}
	return g, nil
}
