package kernel

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// SkillFunc executes one skill with the parsed string arguments and returns
// the text to splice into the assistant reply.
type SkillFunc func(ctx context.Context, args map[string]string) (string, error)

// Skill is a named, callable capability exposed to the model.
type Skill struct {
	Name        string
	Description string
	Params      []string
	Run         SkillFunc
}

// Registry holds the installed skills.
type Registry struct {
	mu     sync.RWMutex
	skills map[string]Skill
}

func NewRegistry() *Registry {
	return &Registry{skills: make(map[string]Skill)}
}

func (r *Registry) Register(s Skill) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skills[s.Name] = s
}

// Execute runs a skill by name. An unknown name or a skill error becomes a
// user-facing German message rather than an error, so a bad call never
// breaks the chat turn.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]string) string {
	r.mu.RLock()
	s, ok := r.skills[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Sprintf("❌ Unbekannter Skill: %s", name)
	}
	out, err := s.Run(ctx, args)
	if err != nil {
		return fmt.Sprintf("❌ Skill %s fehlgeschlagen: %v", name, err)
	}
	return out
}

// Describe renders the skill list for the system prompt, one line per skill.
func (r *Registry) Describe() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.skills))
	for name := range r.skills {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		s := r.skills[name]
		sig := name + "("
		for i, p := range s.Params {
			if i > 0 {
				sig += ", "
			}
			sig += p + `="..."`
		}
		sig += ")"
		fmt.Fprintf(&sb, "- %s: %s\n", sig, s.Description)
	}
	return sb.String()
}

// Names lists the registered skills sorted by name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.skills))
	for name := range r.skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
