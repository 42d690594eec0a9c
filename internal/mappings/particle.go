package mappings

import "strconv"

// Particle is a 1.8 particle as the 1.7 client names it. Extra is the
// number of trailing VarInt arguments the 1.8 packet carries for it.
type Particle struct {
	Name  string
	Extra int
}

// Particles indexed by their 1.8 id.
var particles = [...]Particle{
	{Name: "explode"},
	{Name: "largeexplode"},
	{Name: "hugeexplosion"},
	{Name: "fireworksSpark"},
	{Name: "bubble"},
	{Name: "splash"},
	{Name: "wake"},
	{Name: "suspended"},
	{Name: "depthsuspend"},
	{Name: "crit"},
	{Name: "magicCrit"},
	{Name: "smoke"},
	{Name: "largesmoke"},
	{Name: "spell"},
	{Name: "instantSpell"},
	{Name: "mobSpell"},
	{Name: "mobSpellAmbient"},
	{Name: "witchMagic"},
	{Name: "dripWater"},
	{Name: "dripLava"},
	{Name: "angryVillager"},
	{Name: "happyVillager"},
	{Name: "townaura"},
	{Name: "note"},
	{Name: "portal"},
	{Name: "enchantmenttable"},
	{Name: "flame"},
	{Name: "lava"},
	{Name: "footstep"},
	{Name: "cloud"},
	{Name: "reddust"},
	{Name: "snowballpoof"},
	{Name: "snowshovel"},
	{Name: "slime"},
	{Name: "heart"},
	{Name: "barrier"},
	{Name: "iconcrack", Extra: 2},
	{Name: "blockcrack", Extra: 1},
	{Name: "blockdust", Extra: 1},
	{Name: "droplet"},
	{Name: "take"},
	{Name: "mobappearance"},
}

// Well known particle ids.
const (
	ParticleIconCrack  int32 = 36
	ParticleBlockCrack int32 = 37
	ParticleBlockDust  int32 = 38
)

// ParticleByID returns the particle with the 1.8 id.
func ParticleByID(id int32) (Particle, bool) {
	if id < 0 || int(id) >= len(particles) {
		return Particle{}, false
	}
	return particles[id], true
}

// ParticleByName returns the particle with the 1.7 name.
func ParticleByName(name string) (Particle, bool) {
	for _, p := range particles {
		if p.Name == name {
			return p, true
		}
	}
	return Particle{}, false
}

// LegacyParticleName builds the 1.7 particle name for a 1.8 particle and its
// extra arguments. Crack particles encode their block or item in the name.
func LegacyParticleName(id int32, args []int32) (string, bool) {
	p, ok := ParticleByID(id)
	if !ok {
		return "", false
	}
	switch id {
	case ParticleIconCrack:
		if len(args) < 2 {
			return "", false
		}
		return p.Name + "_" + strconv.Itoa(int(args[0])) + "_" + strconv.Itoa(int(args[1])), true
	case ParticleBlockCrack, ParticleBlockDust:
		if len(args) < 1 {
			return "", false
		}
		return p.Name + "_" + strconv.Itoa(int(args[0]&4095)) + "_" + strconv.Itoa(int(args[0]>>12)), true
	}
	return p.Name, true
}
