package workflow

import (
	"context"
	"fmt"
)

// GuardFunc evaluates whether a permitted transition should actually fire
type GuardFunc func(ctx context.Context) bool

// StateMachine tracks the current stage and validates actions against it
type StateMachine interface {
	// Stage returns the current stage
	Stage() Stage

	// CanFire returns true if the action is permitted in the current stage
	CanFire(action Action) bool

	// Fire attempts the action, advancing to the target stage if allowed
	Fire(ctx context.Context, action Action) error

	// PermittedActions returns all actions that can be fired in the current stage
	PermittedActions() []Action
}

// Builder assembles a stage/action transition table
type Builder interface {
	// Configure returns the configuration for the given stage
	Configure(stage Stage) StageConfiguration

	// Build creates a machine instance positioned at the given stage
	Build(initial Stage) StateMachine
}

// StageConfiguration configures outgoing transitions for one stage
type StageConfiguration interface {
	// Permit allows an action to transition to the target stage
	Permit(action Action, to Stage) StageConfiguration

	// PermitIf allows an action to transition to the target stage when the guard passes
	PermitIf(action Action, to Stage, guard GuardFunc) StageConfiguration
}

type transition struct {
	to    Stage
	guard GuardFunc
}

type stageConfig struct {
	from        Stage
	transitions map[Action][]transition
}

type builder struct {
	configs map[Stage]*stageConfig
}

type machine struct {
	current Stage
	configs map[Stage]*stageConfig
}

// NewBuilder creates an empty state machine builder
func NewBuilder() Builder {
	return &builder{configs: make(map[Stage]*stageConfig)}
}

func (b *builder) Configure(stage Stage) StageConfiguration {
	if !stage.IsValid() {
		panic(fmt.Sprintf("configure: %v: %s", ErrInvalidStage, stage))
	}
	cfg, ok := b.configs[stage]
	if !ok {
		cfg = &stageConfig{from: stage, transitions: make(map[Action][]transition)}
		b.configs[stage] = cfg
	}
	return cfg
}

func (b *builder) Build(initial Stage) StateMachine {
	if !initial.IsValid() {
		panic(fmt.Sprintf("build: %v: %s", ErrInvalidStage, initial))
	}

	// Copy the transition table so machines built later are unaffected
	// by further Configure calls.
	configs := make(map[Stage]*stageConfig, len(b.configs))
	for stage, cfg := range b.configs {
		transitions := make(map[Action][]transition, len(cfg.transitions))
		for action, ts := range cfg.transitions {
			transitions[action] = append([]transition(nil), ts...)
		}
		configs[stage] = &stageConfig{from: stage, transitions: transitions}
	}

	return &machine{current: initial, configs: configs}
}

func (c *stageConfig) Permit(action Action, to Stage) StageConfiguration {
	return c.PermitIf(action, to, nil)
}

func (c *stageConfig) PermitIf(action Action, to Stage, guard GuardFunc) StageConfiguration {
	if !to.IsValid() {
		panic(fmt.Sprintf("permit: %v: %s", ErrInvalidStage, to))
	}
	c.transitions[action] = append(c.transitions[action], transition{to: to, guard: guard})
	return c
}

func (m *machine) Stage() Stage {
	return m.current
}

func (m *machine) CanFire(action Action) bool {
	cfg, ok := m.configs[m.current]
	if !ok {
		return false
	}
	return len(cfg.transitions[action]) > 0
}

func (m *machine) Fire(ctx context.Context, action Action) error {
	cfg, ok := m.configs[m.current]
	if !ok {
		return fmt.Errorf("%w: action %s from stage %s", ErrInvalidTransition, action, m.current)
	}

	transitions := cfg.transitions[action]
	if len(transitions) == 0 {
		return fmt.Errorf("%w: action %s from stage %s", ErrInvalidTransition, action, m.current)
	}

	// First transition whose guard passes wins.
	for _, t := range transitions {
		if t.guard == nil || t.guard(ctx) {
			m.current = t.to
			return nil
		}
	}

	return fmt.Errorf("%w: action %s from stage %s", ErrGuardFailed, action, m.current)
}

func (m *machine) PermittedActions() []Action {
	cfg, ok := m.configs[m.current]
	if !ok {
		return []Action{}
	}
	actions := make([]Action, 0, len(cfg.transitions))
	for action := range cfg.transitions {
		actions = append(actions, action)
	}
	return actions
}
