// Package fixture reads and writes offline match results so an event can be
// analysed without the live API.
//
// A fixture is YAML (JSON is accepted too):
//
//	groups:
//	  - id: "1"
//	    matches:
//	      - a: {id: "101", name: Alice, placement: 1}
//	        b: {id: "102", name: Bob, placement: 2}
package fixture

import (
	"context"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/tiewatch/internal/adapters/feed"
	"github.com/okian/tiewatch/internal/domain/model"
)

// Document is the whole fixture file.
type Document struct {
	Groups []Group `koanf:"groups"`
}

// Group is one round-robin group of a fixture.
type Group struct {
	ID      string  `koanf:"id"`
	Matches []Match `koanf:"matches"`
}

// Match is one set between two slots. Equal placements mean the set has not
// been played yet.
type Match struct {
	A Slot `koanf:"a"`
	B Slot `koanf:"b"`
}

// Slot is one side of a match.
type Slot struct {
	ID        string `koanf:"id"`
	Name      string `koanf:"name"`
	Placement int    `koanf:"placement"`
}

// Records flattens the document into feed records, in file order.
func (d *Document) Records() []model.MatchRecord {
	var out []model.MatchRecord
	for _, g := range d.Groups {
		for _, m := range g.Matches {
			out = append(out, model.MatchRecord{
				Group:      model.GroupID(g.ID),
				PlayerA:    model.PlayerID(m.A.ID),
				NameA:      m.A.Name,
				PlacementA: m.A.Placement,
				PlayerB:    model.PlayerID(m.B.ID),
				NameB:      m.B.Name,
				PlacementB: m.B.Placement,
			})
		}
	}
	return out
}

// Load parses a fixture file. Numeric ids are read as their decimal text.
func Load(path string) (*Document, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", feed.ErrUpstream, path, err)
	}
	var doc Document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", feed.ErrUpstream, path, err)
	}
	return &doc, nil
}

// Marshal renders doc as YAML.
func Marshal(doc *Document) ([]byte, error) {
	k := koanf.New(".")
	if err := k.Set("groups", doc.raw()); err != nil {
		return nil, fmt.Errorf("build fixture: %w", err)
	}
	return k.Marshal(yaml.Parser())
}

// Save writes doc to path as YAML.
func Save(path string, doc *Document) error {
	b, err := Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

func (d *Document) raw() []any {
	groups := make([]any, 0, len(d.Groups))
	for _, g := range d.Groups {
		matches := make([]any, 0, len(g.Matches))
		for _, m := range g.Matches {
			matches = append(matches, map[string]any{
				"a": m.A.raw(),
				"b": m.B.raw(),
			})
		}
		groups = append(groups, map[string]any{"id": g.ID, "matches": matches})
	}
	return groups
}

func (s Slot) raw() map[string]any {
	return map[string]any{"id": s.ID, "name": s.Name, "placement": s.Placement}
}

// Source feeds a fixture file into a sink.
type Source struct {
	path string
}

// NewSource creates a source for the fixture at path.
func NewSource(path string) *Source { return &Source{path: path} }

// Name implements feed.Source.
func (s *Source) Name() string { return "fixture:" + s.path }

// Fetch implements feed.Source. Every record is validated before it reaches
// the sink, so a malformed fixture stops at the first bad match.
func (s *Source) Fetch(ctx context.Context, sink feed.Sink) error {
	doc, err := Load(s.path)
	if err != nil {
		return err
	}
	for i, rec := range doc.Records() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("%w: record %d of group %s: %w", feed.ErrUpstream, i, rec.Group, err)
		}
		if err := sink.IngestRecord(ctx, rec); err != nil {
			return fmt.Errorf("record %d of group %s: %w", i, rec.Group, err)
		}
	}
	return nil
}
