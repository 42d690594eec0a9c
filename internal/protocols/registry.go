// Package protocols keeps the registry of version translations and builds
// the chain connecting a client version to a server version. Translations
// register themselves from init in their own packages.
package protocols

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/dxomg/ViaRewind/internal/chat"
	"github.com/dxomg/ViaRewind/internal/cooldown"
	"github.com/dxomg/ViaRewind/internal/item"
	"github.com/dxomg/ViaRewind/internal/mappings"
	"github.com/dxomg/ViaRewind/internal/pipeline"
)

// Env carries the shared collaborators a translation is built with.
type Env struct {
	Tables   *mappings.Tables
	Chat     chat.Converter
	Items    *item.Rewriter
	Cooldown cooldown.Factory
	Log      *slog.Logger
}

// WithDefaults fills unset collaborators.
func (e Env) WithDefaults() Env {
	if e.Tables == nil {
		e.Tables = mappings.Empty()
	}
	if e.Chat == nil {
		e.Chat = chat.NewCodec()
	}
	if e.Items == nil {
		e.Items = item.NewRewriter(e.Tables, e.Chat)
	}
	if e.Log == nil {
		e.Log = slog.Default()
	}
	if e.Cooldown == nil {
		e.Cooldown = cooldown.FromConfig(string(cooldown.IndicatorDisabled), e.Log)
	}
	return e
}

// Factory builds a translation.
type Factory func(env Env) *pipeline.Protocol

type registration struct {
	name          string
	clientVersion int32
	serverVersion int32
	factory       Factory
}

var versions = map[string]registration{}

// Register adds the translation from serverVersion down to clientVersion.
func Register(name string, clientVersion, serverVersion int32, factory Factory) {
	versions[name] = registration{name: name, clientVersion: clientVersion, serverVersion: serverVersion, factory: factory}
}

func Load(name string, env Env) (*pipeline.Protocol, error) {
	r, ok := versions[name]
	if !ok {
		return nil, fmt.Errorf("unknown protocol: %s", name)
	}
	return r.factory(env.WithDefaults()), nil
}

func RegisteredVersions() []string {
	names := make([]string, 0, len(versions))
	for name := range versions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Path builds the chain from serverVersion down to clientVersion, server
// side first. Equal versions yield an empty chain.
func Path(clientVersion, serverVersion int32, env Env) ([]*pipeline.Protocol, error) {
	env = env.WithDefaults()
	var out []*pipeline.Protocol
	for cur := serverVersion; cur != clientVersion; {
		r, ok := step(cur)
		if !ok {
			return nil, fmt.Errorf("no protocol path from %d to %d", serverVersion, clientVersion)
		}
		out = append(out, r.factory(env))
		cur = r.clientVersion
	}
	return out, nil
}

// step picks the registered translation leaving version v.
func step(v int32) (registration, bool) {
	for _, r := range versions {
		if r.serverVersion == v {
			return r, true
		}
	}
	return registration{}, false
}
