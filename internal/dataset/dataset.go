// Package dataset provides the seed leads and grows them into a larger,
// deterministic working set.
package dataset

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/five82/leadconsole/internal/lead"
)

// DefaultTarget is the size the seed is expanded to when no target is configured.
const DefaultTarget = 100

// ErrEmptySeed is returned when there are no seed leads to expand from.
var ErrEmptySeed = errors.New("seed dataset is empty")

//go:embed leads.json
var embeddedSeed []byte

// Seed returns the embedded seed dataset.
func Seed() ([]lead.Lead, error) {
	return parse(embeddedSeed)
}

// LoadSeed reads seed leads from path. An empty path returns the embedded
// dataset.
func LoadSeed(path string) ([]lead.Lead, error) {
	if strings.TrimSpace(path) == "" {
		return Seed()
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return parse(data)
}

func parse(data []byte) ([]lead.Lead, error) {
	var leads []lead.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if len(leads) == 0 {
		return nil, ErrEmptySeed
	}
	seen := make(map[string]struct{}, len(leads))
	for i, l := range leads {
		if strings.TrimSpace(l.ID) == "" {
			return nil, fmt.Errorf("parse seed: lead %d has no id", i)
		}
		if _, dup := seen[l.ID]; dup {
			return nil, fmt.Errorf("parse seed: duplicate id %q", l.ID)
		}
		seen[l.ID] = struct{}{}
		if st, ok := lead.ParseStatus(string(l.Status)); ok {
			leads[i].Status = st
		}
	}
	return leads, nil
}

// Expand grows seed to target entries. The seed entries come first and are
// unchanged; synthetic entry i (1-based) clones seed[(i-1) % len(seed)] with a
// fresh id, the index appended to the name, "+i" tagged into the email and a
// score of max(10, (score+i) % 100). The output depends only on the inputs.
func Expand(seed []lead.Lead, target int) ([]lead.Lead, error) {
	if len(seed) == 0 {
		return nil, ErrEmptySeed
	}
	size := target
	if size < len(seed) {
		size = len(seed)
	}

	out := make([]lead.Lead, len(seed), size)
	copy(out, seed)

	taken := make(map[string]struct{}, size)
	for _, l := range seed {
		taken[l.ID] = struct{}{}
	}

	for i := 1; len(out) < size; i++ {
		base := seed[(i-1)%len(seed)]
		clone := base
		clone.ID = syntheticID(len(seed)+i, taken)
		clone.Name = base.Name + " " + strconv.Itoa(i)
		clone.Email = strings.Replace(base.Email, "@", "+"+strconv.Itoa(i)+"@", 1)
		clone.Score = max(10, (base.Score+i)%100)
		taken[clone.ID] = struct{}{}
		out = append(out, clone)
	}
	return out, nil
}

func syntheticID(position int, taken map[string]struct{}) string {
	id := "lead-" + strconv.Itoa(position)
	for n := 2; ; n++ {
		if _, clash := taken[id]; !clash {
			return id
		}
		id = fmt.Sprintf("lead-%d-%d", position, n)
	}
}
