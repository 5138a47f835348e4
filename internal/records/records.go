// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package records loads bibliographic records and quality criteria from disk.
// Implements: prd001-dedup (R1.4), prd002-quality (R2.5);
//
//	docs/ARCHITECTURE § Input Loading.
package records

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/slr-engine/pkg/types"
)

// RecordsFile is the on-disk representation of a records list. A bare
// top-level list is also accepted.
type RecordsFile struct {
	Records []types.Record `json:"records" yaml:"records"`
}

// LoadRecords reads records from a .yaml, .yml, or .json file. The file
// may contain either a bare list of records or a mapping with a top-level
// "records" key.
func LoadRecords(path string) ([]types.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		var bare []types.Record
		if err := yaml.Unmarshal(data, &bare); err == nil {
			return bare, nil
		}
		var rf RecordsFile
		if err := yaml.Unmarshal(data, &rf); err != nil {
			return nil, fmt.Errorf("parsing records file %s: %w", path, err)
		}
		return rf.Records, nil
	case ".json":
		var bare []types.Record
		if err := json.Unmarshal(data, &bare); err == nil {
			return bare, nil
		}
		var rf RecordsFile
		if err := json.Unmarshal(data, &rf); err != nil {
			return nil, fmt.Errorf("parsing records file %s: %w", path, err)
		}
		return rf.Records, nil
	default:
		return nil, fmt.Errorf("unsupported records file extension %q (want .yaml, .yml, or .json)", filepath.Ext(path))
	}
}

// criterionEntry accepts the two shapes a per-query criterion may take on
// disk: keyword lists at the top level, or the legacy nested "metadata"
// wrapper. Both normalize to types.QualityCriterion here, at the boundary.
type criterionEntry struct {
	IncludeAny []string `json:"include_any" yaml:"include_any"`
	ExcludeAny []string `json:"exclude_any" yaml:"exclude_any"`
	Metadata   *struct {
		IncludeAny []string `json:"include_any" yaml:"include_any"`
		ExcludeAny []string `json:"exclude_any" yaml:"exclude_any"`
	} `json:"metadata" yaml:"metadata"`
}

func (e criterionEntry) normalize() types.QualityCriterion {
	crit := types.QualityCriterion{
		IncludeAny: e.IncludeAny,
		ExcludeAny: e.ExcludeAny,
	}
	if e.Metadata != nil {
		if len(crit.IncludeAny) == 0 {
			crit.IncludeAny = e.Metadata.IncludeAny
		}
		if len(crit.ExcludeAny) == 0 {
			crit.ExcludeAny = e.Metadata.ExcludeAny
		}
	}
	return crit
}

// LoadCriteria reads a quality-criteria file: a YAML or JSON mapping from
// query id to keyword lists. Entries may carry include_any/exclude_any at
// the top level or nested under a "metadata" key; the flat shape wins when
// both are present.
func LoadCriteria(path string) (map[string]types.QualityCriterion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading criteria file: %w", err)
	}

	entries := make(map[string]criterionEntry)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parsing criteria file %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parsing criteria file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported criteria file extension %q (want .yaml, .yml, or .json)", filepath.Ext(path))
	}

	criteria := make(map[string]types.QualityCriterion, len(entries))
	for id, entry := range entries {
		criteria[id] = entry.normalize()
	}
	return criteria, nil
}
