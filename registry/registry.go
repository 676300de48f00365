package registry

import (
	"fmt"
	"slices"
	"sync"
)

// Registry is the ordered set of message and reaction commands along with
// the prefix that marks command text. Commands are kept in registration
// order and duplicates are allowed.
//
// A Registry is safe for concurrent use. Handlers may register commands
// while events are routed; a new command is seen by events routed after the
// registration completes.
type Registry struct {
	prefix    rune
	commands  []*MessageCommand
	reactions []*ReactionCommand
	mu        sync.RWMutex
}

func NewRegistry(prefix rune) *Registry {
	return &Registry{prefix: prefix}
}

func (r *Registry) Prefix() rune {
	return r.prefix
}

// AddCommand appends a message command.
func (r *Registry) AddCommand(cmd *MessageCommand) error {
	if err := cmd.validate(); err != nil {
		return fmt.Errorf("message command %q: %w", cmd.Label, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
	return nil
}

// AddReaction appends a reaction command.
func (r *Registry) AddReaction(cmd *ReactionCommand) error {
	if err := cmd.validate(); err != nil {
		return fmt.Errorf("reaction command %q: %w", cmd.Label, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reactions = append(r.reactions, cmd)
	return nil
}

// Commands returns a snapshot of the message commands in registration order.
func (r *Registry) Commands() []*MessageCommand {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.commands)
}

// Reactions returns a snapshot of the reaction commands in registration order.
func (r *Registry) Reactions() []*ReactionCommand {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.reactions)
}

// Find returns the message commands a user could mean by name: those whose
// trigger is name, or whose trigger preceded by the prefix is name.
func (r *Registry) Find(name string) []*MessageCommand {
	var found []*MessageCommand
	for _, cmd := range r.Commands() {
		if cmd.Trigger == name || string(r.prefix)+cmd.Trigger == name {
			found = append(found, cmd)
		}
	}
	return found
}
