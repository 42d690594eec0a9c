// Package item rewrites item stacks between the 1.8 and 1.7 representations.
package item

import (
	"github.com/dxomg/ViaRewind/internal/chat"
	"github.com/dxomg/ViaRewind/internal/mappings"
	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/pkg/nbt"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// Tag prefixes every private key the 1.7 rewriter stores on items.
const Tag = "ViaRewind|1.8"

// EnchantmentDepthStrider does not exist on 1.7 clients.
const EnchantmentDepthStrider int16 = 8

// Replacer looks up the stand-in of an item the client does not know.
type Replacer interface {
	Replacement(id, damage int16) (mappings.Replacement, bool)
}

// Options configure a Rewriter.
type Options struct {
	// Tag prefixes the private keys stored on rewritten items.
	Tag          string
	Replacements Replacer
	Chat         chat.Converter
	// Enchantments the client lacks, shown as lore lines.
	Enchantments map[int16]string
	// LegacyBooks converts written book pages to legacy text.
	LegacyBooks bool
}

// Rewriter converts items shown to an older client and restores them on the
// way back. ToServer undoes exactly what ToClient did.
type Rewriter struct {
	tag          string
	tables       Replacer
	chat         chat.Converter
	enchantments *Enchantments
	books        bool
}

// NewRewriter returns the rewriter for 1.7 clients.
func NewRewriter(tables *mappings.Tables, conv chat.Converter) *Rewriter {
	if tables == nil {
		tables = mappings.Empty()
	}
	return New(Options{
		Tag:          Tag,
		Replacements: tables.Legacy1_7(),
		Chat:         conv,
		Enchantments: map[int16]string{EnchantmentDepthStrider: "§7Depth Strider"},
		LegacyBooks:  true,
	})
}

func New(opts Options) *Rewriter {
	if opts.Replacements == nil {
		opts.Replacements = mappings.Replacements(nil)
	}
	if opts.Chat == nil {
		opts.Chat = chat.NewCodec()
	}
	ench := NewEnchantments(opts.Tag)
	for id, name := range opts.Enchantments {
		ench.Register(id, name)
	}
	return &Rewriter{
		tag:          opts.Tag,
		tables:       opts.Replacements,
		chat:         opts.Chat,
		enchantments: ench,
		books:        opts.LegacyBooks,
	}
}

// ToClient rewrites item in place for the older client and returns it. The
// stages run as data replacement, enchantments, then book pages.
func (r *Rewriter) ToClient(item *protocol.ItemStack) *protocol.ItemStack {
	if item == nil {
		return nil
	}
	hadTag := item.Tag != nil
	if !hadTag {
		item.Tag = nbt.NewCompound()
	}

	r.dataToClient(item)
	r.enchantments.ToClient(item.Tag)
	if r.books && item.ID == packet.ItemWrittenBook {
		r.pagesToClient(item.Tag)
	}

	if !hadTag && item.Tag.Len() == 0 {
		item.Tag = nil
	}
	return item
}

// ToServer restores an item the client sent back, in the reverse order of
// ToClient.
func (r *Rewriter) ToServer(item *protocol.ItemStack) *protocol.ItemStack {
	if item == nil || item.Tag == nil {
		return item
	}
	if r.books && item.ID == packet.ItemWrittenBook {
		r.pagesToServer(item.Tag)
	}
	r.enchantments.ToServer(item.Tag)
	r.dataToServer(item)

	if item.Tag.Len() == 0 {
		item.Tag = nil
	}
	return item
}

func (r *Rewriter) dataToClient(item *protocol.ItemStack) {
	rep, ok := r.tables.Replacement(item.ID, item.Damage)
	if !ok {
		return
	}
	tag := item.Tag
	tag.Put(r.tag+"|id", nbt.Short(item.ID))
	item.ID = rep.ID
	if rep.Damage != -1 {
		tag.Put(r.tag+"|data", nbt.Short(item.Damage))
		item.Damage = rep.Damage
	}
	if rep.Name == "" {
		return
	}
	display := tag.GetCompound("display")
	if display == nil {
		display = nbt.NewCompound()
		tag.Put("display", display)
	}
	if !display.Has("Name") {
		display.Put("Name", nbt.String("§r"+rep.Name))
		tag.Put(r.tag+"|noCustomName", nbt.Byte(1))
	}
}

func (r *Rewriter) dataToServer(item *protocol.ItemStack) {
	tag := item.Tag
	if id, ok := nbt.Number(tag.Remove(r.tag + "|id")); ok {
		item.ID = int16(id)
	}
	if damage, ok := nbt.Number(tag.Remove(r.tag + "|data")); ok {
		item.Damage = int16(damage)
	}
	if tag.Remove(r.tag+"|noCustomName") != nil {
		if display := tag.GetCompound("display"); display != nil {
			display.Remove("Name")
			if display.Len() == 0 {
				tag.Remove("display")
			}
		}
	}
}

func (r *Rewriter) pagesToClient(tag *nbt.Compound) {
	pages := tag.GetList("pages")
	if pages == nil {
		return
	}
	original := nbt.NewList(nbt.TagString)
	for i, v := range pages.Values {
		page, ok := v.(nbt.String)
		if !ok {
			continue
		}
		original.Add(page)
		pages.Values[i] = nbt.String(r.chat.JSONToLegacy(string(page)))
	}
	tag.Put(r.tag+"|pages", original)
}

func (r *Rewriter) pagesToServer(tag *nbt.Compound) {
	original, ok := tag.Remove(r.tag + "|pages").(*nbt.List)
	if !ok {
		return
	}
	tag.Put("pages", original)
}
