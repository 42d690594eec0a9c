package item

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dxomg/ViaRewind/internal/mappings"
	"github.com/dxomg/ViaRewind/pkg/nbt"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// upperConverter stands in for the JSON to legacy conversion.
type upperConverter struct{}

func (upperConverter) JSONToLegacy(s string) string { return strings.ToUpper(s) }
func (upperConverter) LegacyToJSON(s string) string { return strings.ToLower(s) }

func enchantment(id, level int16) *nbt.Compound {
	c := nbt.NewCompound()
	c.Put("id", nbt.Short(id))
	c.Put("lvl", nbt.Short(level))
	return c
}

func enchanted(key string, entries ...*nbt.Compound) *nbt.Compound {
	list := nbt.NewList(nbt.TagCompound)
	for _, e := range entries {
		list.Add(e)
	}
	tag := nbt.NewCompound()
	tag.Put(key, list)
	return tag
}

func loreOf(t *testing.T, item *protocol.ItemStack) []string {
	t.Helper()
	lore := item.Tag.GetCompound("display").GetList("Lore")
	if lore == nil {
		return nil
	}
	var out []string
	for _, v := range lore.Values {
		out = append(out, string(v.(nbt.String)))
	}
	return out
}

func TestNilItem(t *testing.T) {
	r := NewRewriter(nil, upperConverter{})
	if r.ToClient(nil) != nil || r.ToServer(nil) != nil {
		t.Errorf("nil item produced a value")
	}
}

func TestPlainItemKeepsNilTag(t *testing.T) {
	r := NewRewriter(nil, upperConverter{})
	item := &protocol.ItemStack{ID: 276, Count: 1}
	r.ToClient(item)
	if item.Tag != nil {
		t.Errorf("ToClient attached a tag to a plain item")
	}
}

func TestDepthStriderRoundTrip(t *testing.T) {
	r := NewRewriter(nil, upperConverter{})
	tag := enchanted("ench", enchantment(EnchantmentDepthStrider, 3))
	original := tag.Clone()
	item := &protocol.ItemStack{ID: 313, Count: 1, Tag: tag}

	r.ToClient(item)
	if lore := loreOf(t, item); len(lore) != 1 || lore[0] != "§7Depth Strider III" {
		t.Errorf("lore = %q", lore)
	}
	ench := item.Tag.GetList("ench")
	if ench.Len() != 1 {
		t.Fatalf("client ench list has %d entries, want the dummy", ench.Len())
	}
	if id, _ := ench.Values[0].(*nbt.Compound).GetNumber("id"); id != 0 {
		t.Errorf("dummy enchantment id = %d", id)
	}
	if flags, _ := item.Tag.GetNumber("HideFlags"); flags&1 == 0 {
		t.Errorf("HideFlags = %d, enchantments not hidden", flags)
	}

	r.ToServer(item)
	if !nbt.Equal(item.Tag, original) {
		t.Errorf("round trip changed the tag: %v", item.Tag.Names())
	}
}

func TestMixedEnchantmentsRoundTrip(t *testing.T) {
	r := NewRewriter(nil, upperConverter{})
	tag := enchanted("ench", enchantment(16, 5), enchantment(EnchantmentDepthStrider, 1))
	display := nbt.NewCompound()
	lore := nbt.NewList(nbt.TagString)
	lore.Add(nbt.String("Custom"))
	display.Put("Lore", lore)
	tag.Put("display", display)
	tag.Put("HideFlags", nbt.Int(4))
	original := tag.Clone()
	item := &protocol.ItemStack{ID: 276, Count: 1, Tag: tag}

	r.ToClient(item)
	if got := loreOf(t, item); len(got) != 2 || got[0] != "§7Depth Strider I" || got[1] != "Custom" {
		t.Errorf("lore = %q", got)
	}
	if n := item.Tag.GetList("ench").Len(); n != 1 {
		t.Errorf("client ench list has %d entries, want sharpness only", n)
	}
	if flags, _ := item.Tag.GetNumber("HideFlags"); flags != 4 {
		t.Errorf("HideFlags = %d, want untouched 4", flags)
	}

	r.ToServer(item)
	if !nbt.Equal(item.Tag, original) {
		t.Errorf("round trip changed the tag")
	}
}

func TestStoredEnchantmentsRoundTrip(t *testing.T) {
	r := NewRewriter(nil, upperConverter{})
	tag := enchanted("StoredEnchantments", enchantment(EnchantmentDepthStrider, 2))
	original := tag.Clone()
	item := &protocol.ItemStack{ID: 403, Count: 1, Tag: tag}

	r.ToClient(item)
	if item.Tag.GetList("StoredEnchantments").Len() != 0 {
		t.Errorf("stored enchantment kept on the client")
	}
	if item.Tag.Has("HideFlags") {
		t.Errorf("stored enchantments set HideFlags")
	}
	r.ToServer(item)
	if !nbt.Equal(item.Tag, original) {
		t.Errorf("round trip changed the tag")
	}
}

func TestBookPagesRoundTrip(t *testing.T) {
	r := NewRewriter(nil, upperConverter{})
	pages := nbt.NewList(nbt.TagString)
	pages.Add(nbt.String(`{"text":"page one"}`))
	pages.Add(nbt.String(`{"text":"page two"}`))
	tag := nbt.NewCompound()
	tag.Put("pages", pages)
	tag.Put("title", nbt.String("Diary"))
	original := tag.Clone()
	item := &protocol.ItemStack{ID: 387, Count: 1, Tag: tag}

	r.ToClient(item)
	got := item.Tag.GetList("pages")
	if s := string(got.Values[1].(nbt.String)); s != `{"TEXT":"PAGE TWO"}` {
		t.Errorf("client page = %q", s)
	}
	r.ToServer(item)
	if !nbt.Equal(item.Tag, original) {
		t.Errorf("round trip did not restore the pages")
	}
}

func TestReplacementRoundTrip(t *testing.T) {
	dir := t.TempDir()
	table := `{"165": {"id": 35, "damage": 5, "name": "Slime Block"}}`
	if err := os.WriteFile(filepath.Join(dir, mappings.ItemReplacementsFile), []byte(table), 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}
	tables, err := mappings.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := NewRewriter(tables, upperConverter{})

	item := &protocol.ItemStack{ID: 165, Count: 12, Damage: 0}
	r.ToClient(item)
	if item.ID != 35 || item.Damage != 5 || item.Count != 12 {
		t.Errorf("client item = %d:%d x%d", item.ID, item.Damage, item.Count)
	}
	if name, _ := item.Tag.GetCompound("display").GetString("Name"); name != "§rSlime Block" {
		t.Errorf("display name = %q", name)
	}

	r.ToServer(item)
	if item.ID != 165 || item.Damage != 0 || item.Tag != nil {
		t.Errorf("server item = %d:%d tag %v", item.ID, item.Damage, item.Tag)
	}
}

func TestRomanNumeral(t *testing.T) {
	tests := map[int]string{1: "I", 4: "IV", 10: "X", 11: "11", 0: "0"}
	for n, want := range tests {
		if got := RomanNumeral(n); got != want {
			t.Errorf("RomanNumeral(%d) = %q, want %q", n, got, want)
		}
	}
}
