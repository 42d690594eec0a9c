// Package mappings loads the static lookup tables the protocol translations
// consult. Every table is immutable once loaded; a lookup miss reports false
// and callers fall back to a safe default.
package mappings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/francoispqt/gojay"
)

// Data file names inside the data directory.
const (
	SoundsFile           = "sounds-1.9.4.json"
	SoundNamesFile       = "sound-names-1.9.4to1.8.json"
	ItemReplacementsFile = "item-replacements-1.8to1.7.json"

	ItemReplacements1_8File = "item-replacements-1.9.4to1.8.json"
)

// Replacement describes the stand-in shown to an older client for an item
// it does not know. Damage -1 keeps the original damage value.
type Replacement struct {
	ID     int16
	Damage int16
	Name   string
}

type itemKey struct {
	id     int16
	damage int16
}

// anyDamage matches every damage value of an item.
const anyDamage int16 = -1

// Replacements maps items, and the blocks sharing their ids, to stand-ins.
type Replacements map[itemKey]Replacement

// Replacement returns the stand-in for item id with the given damage. An
// entry for the exact damage wins over one for every damage.
func (m Replacements) Replacement(id, damage int16) (Replacement, bool) {
	if r, ok := m[itemKey{id, damage}]; ok {
		return r, true
	}
	r, ok := m[itemKey{id, anyDamage}]
	return r, ok
}

// Block returns the stand-in for a block id and metadata, or the block
// itself when the client knows it.
func (m Replacements) Block(id, meta int) (int, int) {
	r, ok := m.Replacement(int16(id), int16(meta))
	if !ok {
		return id, meta
	}
	if r.Damage == anyDamage {
		return int(r.ID), meta
	}
	return int(r.ID), int(r.Damage) & 0xF
}

// Tables is the set of loaded lookup tables.
type Tables struct {
	sounds     []string
	soundNames map[string]string
	items      Replacements
	items1_8   Replacements
}

// Empty returns tables on which every lookup misses.
func Empty() *Tables {
	return &Tables{
		soundNames: make(map[string]string),
		items:      make(Replacements),
		items1_8:   make(Replacements),
	}
}

// Load reads every table from dir. A missing file leaves its table empty; a
// malformed one is an error.
func Load(dir string) (*Tables, error) {
	t := Empty()
	if err := loadFile(filepath.Join(dir, SoundsFile), (*soundList)(&t.sounds)); err != nil {
		return nil, err
	}
	if err := loadFile(filepath.Join(dir, SoundNamesFile), stringMap(t.soundNames)); err != nil {
		return nil, err
	}
	if err := loadFile(filepath.Join(dir, ItemReplacementsFile), itemTable(t.items)); err != nil {
		return nil, err
	}
	if err := loadFile(filepath.Join(dir, ItemReplacements1_8File), itemTable(t.items1_8)); err != nil {
		return nil, err
	}
	return t, nil
}

func loadFile(path string, v gojay.UnmarshalerJSONObject) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := gojay.UnmarshalJSONObject(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// SoundName returns the 1.9.4 sound event name of id.
func (t *Tables) SoundName(id int32) (string, bool) {
	if id < 0 || int(id) >= len(t.sounds) {
		return "", false
	}
	return t.sounds[id], true
}

// LegacySoundName maps a 1.9.4 sound event name to the 1.8 sound name.
func (t *Tables) LegacySoundName(name string) (string, bool) {
	old, ok := t.soundNames[name]
	return old, ok
}

// Replacement returns the 1.7 stand-in for a 1.8 item or block.
func (t *Tables) Replacement(id, damage int16) (Replacement, bool) {
	return t.items.Replacement(id, damage)
}

// Legacy1_7 is the table of 1.8 items and blocks a 1.7 client lacks.
func (t *Tables) Legacy1_7() Replacements { return t.items }

// Legacy1_8 is the table of 1.9.4 items and blocks a 1.8 client lacks.
func (t *Tables) Legacy1_8() Replacements { return t.items1_8 }

// SoundCount reports the size of the sound table.
func (t *Tables) SoundCount() int { return len(t.sounds) }

// soundList decodes {"sounds": ["name", ...]}.
type soundList []string

func (s *soundList) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	if key != "sounds" {
		return nil
	}
	return dec.Array(gojay.DecodeArrayFunc(func(dec *gojay.Decoder) error {
		var name string
		if err := dec.String(&name); err != nil {
			return err
		}
		*s = append(*s, name)
		return nil
	}))
}

func (s *soundList) NKeys() int { return 0 }

// stringMap decodes a flat object of string values.
type stringMap map[string]string

func (m stringMap) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	var v string
	if err := dec.String(&v); err != nil {
		return err
	}
	m[key] = v
	return nil
}

func (m stringMap) NKeys() int { return 0 }

// itemTable decodes {"<id>[:<damage>]": {"id": n, "damage": n, "name": s}}.
type itemTable Replacements

func (m itemTable) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	k, err := parseItemKey(key)
	if err != nil {
		return err
	}
	r := replacement{Damage: anyDamage}
	if err := dec.Object(&r); err != nil {
		return err
	}
	m[k] = Replacement(r)
	return nil
}

func (m itemTable) NKeys() int { return 0 }

func parseItemKey(key string) (itemKey, error) {
	idPart, damagePart, hasDamage := strings.Cut(key, ":")
	id, err := strconv.ParseInt(idPart, 10, 16)
	if err != nil {
		return itemKey{}, fmt.Errorf("item key %q: %w", key, err)
	}
	k := itemKey{id: int16(id), damage: anyDamage}
	if hasDamage {
		d, err := strconv.ParseInt(damagePart, 10, 16)
		if err != nil {
			return itemKey{}, fmt.Errorf("item key %q: %w", key, err)
		}
		k.damage = int16(d)
	}
	return k, nil
}

type replacement Replacement

func (r *replacement) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	switch key {
	case "id":
		return dec.Int16(&r.ID)
	case "damage":
		return dec.Int16(&r.Damage)
	case "name":
		return dec.String(&r.Name)
	}
	return nil
}

func (r *replacement) NKeys() int { return 0 }
