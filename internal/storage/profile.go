package storage

import (
	"github.com/google/uuid"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/pkg/nbt"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// ProfileProperty is a signed profile property such as "textures".
type ProfileProperty struct {
	Name      string
	Value     string
	Signature string
}

// GameProfile is one tab list entry as announced by the server.
type GameProfile struct {
	ID          uuid.UUID
	Name        string
	DisplayName string
	Ping        int32
	GameMode    int32
	Properties  []ProfileProperty
}

// ListName is the name shown in a legacy tab list, at most 16 characters.
func (p *GameProfile) ListName() string {
	name := p.DisplayName
	if name == "" {
		name = p.Name
	}
	if r := []rune(name); len(r) > 16 {
		name = string(r[:16])
	}
	return name
}

// Skull builds a player head item carrying the profile's textures.
func (p *GameProfile) Skull() *protocol.ItemStack {
	owner := nbt.NewCompound()
	owner.Put("Id", nbt.String(p.ID.String()))
	owner.Put("Name", nbt.String(p.Name))

	props := nbt.NewCompound()
	for _, prop := range p.Properties {
		if prop.Name != "textures" {
			continue
		}
		textures := props.GetList("textures")
		if textures == nil {
			textures = nbt.NewList(nbt.TagCompound)
			props.Put("textures", textures)
		}
		entry := nbt.NewCompound()
		entry.Put("Value", nbt.String(prop.Value))
		if prop.Signature != "" {
			entry.Put("Signature", nbt.String(prop.Signature))
		}
		textures.Add(entry)
	}
	owner.Put("Properties", props)

	tag := nbt.NewCompound()
	tag.Put("SkullOwner", owner)
	return &protocol.ItemStack{ID: packet.ItemSkull, Count: 1, Damage: 3, Tag: tag}
}

// Profiles maps player UUIDs to game profiles.
type Profiles struct {
	profiles map[uuid.UUID]*GameProfile
}

func NewProfiles() *Profiles {
	return &Profiles{profiles: make(map[uuid.UUID]*GameProfile)}
}

func (p *Profiles) Put(profile *GameProfile) {
	p.profiles[profile.ID] = profile
}

func (p *Profiles) Get(id uuid.UUID) *GameProfile {
	return p.profiles[id]
}

func (p *Profiles) Remove(id uuid.UUID) *GameProfile {
	profile := p.profiles[id]
	delete(p.profiles, id)
	return profile
}

func (p *Profiles) Len() int {
	return len(p.profiles)
}
