package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"idverify/pkg/domain/residentid"
	"idverify/pkg/platform/sentinel"
)

// yamlDocument is the on-disk layout:
//
//	source: "2023"          # default tag for records without one
//	regions:
//	  - code: "110101"
//	    province: 北京市
//	    prefecture: 市辖区
//	    county: 东城区
type yamlDocument struct {
	Source  string   `yaml:"source"`
	Regions []Record `yaml:"regions"`
}

// DecodeYAML reads a region document from r.
func DecodeYAML(r io.Reader) (map[string]residentid.Region, error) {
	var doc yamlDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, sentinel.ErrEmpty
		}
		return nil, fmt.Errorf("decode region yaml: %v: %w", err, sentinel.ErrMalformed)
	}
	return build(doc.Regions, doc.Source)
}

// YAMLFile loads a region document from the filesystem.
type YAMLFile struct {
	path string
}

func NewYAMLFile(path string) *YAMLFile {
	return &YAMLFile{path: path}
}

func (s *YAMLFile) Name() string {
	return "yaml:" + filepath.Base(s.path)
}

func (s *YAMLFile) Load(ctx context.Context) (map[string]residentid.Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", s.path, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()
	return DecodeYAML(f)
}
