package item

import (
	"strconv"

	"github.com/dxomg/ViaRewind/pkg/nbt"
)

const (
	enchKey   = "ench"
	storedKey = "StoredEnchantments"
)

// Enchantments moves enchantments an older client cannot represent into
// item lore, keeping the originals under private keys for the way back.
type Enchantments struct {
	tag   string
	names map[int16]string
	// hide lists enchantments shown without a level.
	hide map[int16]bool
}

func NewEnchantments(tag string) *Enchantments {
	return &Enchantments{tag: tag, names: make(map[int16]string), hide: make(map[int16]bool)}
}

// Register shows enchantment id as the lore line name.
func (e *Enchantments) Register(id int16, name string) {
	e.names[id] = name
}

// HideLevel shows enchantment id without its level.
func (e *Enchantments) HideLevel(id int16) {
	e.hide[id] = true
}

func (e *Enchantments) ToClient(tag *nbt.Compound) {
	if tag.GetList(enchKey) != nil {
		e.toClient(tag, false)
	}
	if tag.GetList(storedKey) != nil {
		e.toClient(tag, true)
	}
}

func (e *Enchantments) ToServer(tag *nbt.Compound) {
	if tag.Has(e.tag + "|" + enchKey) {
		e.toServer(tag, false)
	}
	if tag.Has(e.tag + "|" + storedKey) {
		e.toServer(tag, true)
	}
}

func (e *Enchantments) toClient(tag *nbt.Compound, stored bool) {
	key := enchKey
	if stored {
		key = storedKey
	}
	list := tag.GetList(key)
	kept := nbt.NewList(nbt.TagCompound)
	remapped := nbt.NewList(nbt.TagCompound)
	var lore []nbt.Tag
	for _, v := range list.Values {
		entry, ok := v.(*nbt.Compound)
		if !ok {
			continue
		}
		id, ok := entry.GetNumber("id")
		if !ok {
			kept.Add(entry)
			continue
		}
		name, ok := e.names[int16(id)]
		if !ok {
			kept.Add(entry)
			continue
		}
		level, _ := entry.GetNumber("lvl")
		if e.hide[int16(id)] {
			lore = append(lore, nbt.String(name))
		} else {
			lore = append(lore, nbt.String(name+" "+RomanNumeral(int(level))))
		}
		remapped.Add(entry)
	}
	if len(lore) == 0 {
		return
	}

	if !stored && kept.Len() == 0 {
		// an empty list would drop the glint; a zero entry keeps it
		dummy := nbt.NewCompound()
		dummy.Put("id", nbt.Short(0))
		dummy.Put("lvl", nbt.Short(0))
		kept.Add(dummy)
		tag.Put(e.tag+"|dummyEnchant", nbt.Byte(0))

		flags, hadFlags := tag.GetNumber("HideFlags")
		if hadFlags {
			tag.Put(e.tag+"|oldHideFlags", nbt.Int(int8(flags)))
		}
		tag.Put("HideFlags", nbt.Int(int8(flags)|1))
	}
	tag.Put(key, kept)
	tag.Put(e.tag+"|"+key, remapped)

	display := tag.GetCompound("display")
	if display == nil {
		display = nbt.NewCompound()
		tag.Put("display", display)
	}
	loreTag := display.GetList("Lore")
	if loreTag == nil {
		loreTag = nbt.NewList(nbt.TagString)
		display.Put("Lore", loreTag)
	}
	loreTag.Values = append(lore, loreTag.Values...)
	loreTag.Elem = nbt.TagString
}

func (e *Enchantments) toServer(tag *nbt.Compound, stored bool) {
	key := enchKey
	if stored {
		key = storedKey
	}
	remapped, _ := tag.Remove(e.tag + "|" + key).(*nbt.List)
	list := tag.GetList(key)
	if list == nil {
		list = nbt.NewList(nbt.TagCompound)
	}

	if !stored && tag.Remove(e.tag+"|dummyEnchant") != nil {
		kept := nbt.NewList(nbt.TagCompound)
		for _, v := range list.Values {
			entry, ok := v.(*nbt.Compound)
			if !ok {
				continue
			}
			id, _ := entry.GetNumber("id")
			level, _ := entry.GetNumber("lvl")
			if id == 0 && level == 0 {
				continue
			}
			kept.Add(entry)
		}
		list = kept
		if old, ok := nbt.Number(tag.Remove(e.tag + "|oldHideFlags")); ok {
			tag.Put("HideFlags", nbt.Int(int32(old)))
		} else {
			tag.Remove("HideFlags")
		}
	}

	display := tag.GetCompound("display")
	var lore *nbt.List
	if display != nil {
		lore = display.GetList("Lore")
	}
	if remapped != nil {
		for _, v := range remapped.Values {
			list.Add(v)
			if lore != nil && lore.Len() > 0 {
				lore.Values = lore.Values[1:]
			}
		}
	}
	if lore != nil && lore.Len() == 0 {
		display.Remove("Lore")
		if display.Len() == 0 {
			tag.Remove("display")
		}
	}
	tag.Put(key, list)
}

var romanNumerals = [...]string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X"}

// RomanNumeral renders 1..10 as roman numerals and other levels as digits.
func RomanNumeral(n int) string {
	if n >= 1 && n <= len(romanNumerals) {
		return romanNumerals[n-1]
	}
	return strconv.Itoa(n)
}
