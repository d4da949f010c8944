package classify

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/tiewatch/internal/domain/model"
)

// Namer resolves a player's display name.
type Namer interface {
	Name(id model.PlayerID) string
}

// NameMap is a Namer backed by a map. Unknown ids render as themselves.
type NameMap map[model.PlayerID]string

// Name implements Namer.
func (m NameMap) Name(id model.PlayerID) string {
	if name, ok := m[id]; ok {
		return name
	}
	return string(id)
}

// Header returns the label line of a group.
func Header(a model.Analysis) string {
	if a.Classification == model.Impossible {
		return fmt.Sprintf("group %s: %s tie impossible", a.Group, a.Classification)
	}
	return fmt.Sprintf("group %s: %s, possible scores:", a.Group, a.Classification)
}

// BranchLines renders one "name: wins" line per branch, players in roster
// order. An IMPOSSIBLE analysis has no lines.
func BranchLines(a model.Analysis, names Namer) []string {
	if a.Classification == model.Impossible {
		return nil
	}
	lines := make([]string, 0, a.Branches.Len())
	var sb strings.Builder
	for _, v := range a.Branches.Vectors {
		sb.Reset()
		for i, id := range a.Branches.Players {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(names.Name(id))
			sb.WriteString(": ")
			sb.WriteString(strconv.Itoa(v[i]))
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// Render writes the header and branch lines of one analysis.
func Render(w io.Writer, a model.Analysis, names Namer) error {
	if _, err := fmt.Fprintln(w, Header(a)); err != nil {
		return err
	}
	for _, line := range BranchLines(a, names) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderAll writes every analysis, each preceded by a blank line.
func RenderAll(w io.Writer, analyses []model.Analysis, names Namer) error {
	for _, a := range analyses {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := Render(w, a, names); err != nil {
			return err
		}
	}
	return nil
}
