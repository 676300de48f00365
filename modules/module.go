package modules

import "github.com/goland-express/herald/registry"

// Module is a named group of commands registered at startup, before the
// gateway connects.
type Module interface {
	Name() string
	Register(ctx *registry.Context) error
}
