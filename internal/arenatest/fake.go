// Package arenatest provides a scripted arena.Env for tests
package arenatest

import (
	"github.com/boristopalov/colosseum/pkg/arena"
)

// ResetCall records the arguments of a Reset
type ResetCall struct {
	Seed    *int64
	Options *arena.ResetOptions
}

// MakeCall records the arguments of a Maker call
type MakeCall struct {
	GameID   string
	Settings arena.EnvironmentSettingsMultiAgent
	Params   arena.MakeParams
}

// FakeEnv replays Results in order and records every call
type FakeEnv struct {
	Results []arena.StepResult
	// StepErr is returned by the step with index StepErrAt
	StepErr   error
	StepErrAt int
	ResetErr  error

	Resets  []ResetCall
	Steps   []arena.Actions
	Renders int
	Closes  int
}

func (f *FakeEnv) Reset(seed *int64, options *arena.ResetOptions) (arena.Observation, arena.Info, error) {
	f.Resets = append(f.Resets, ResetCall{Seed: seed, Options: options})
	if f.ResetErr != nil {
		return arena.Observation{}, nil, f.ResetErr
	}
	return arena.Observation{Round: 1, Timer: 99}, arena.Info{"reset": len(f.Resets)}, nil
}

func (f *FakeEnv) Step(actions arena.Actions) (arena.StepResult, error) {
	i := len(f.Steps)
	copied := make(arena.Actions, len(actions))
	for k, v := range actions {
		copied[k] = v
	}
	f.Steps = append(f.Steps, copied)
	if f.StepErr != nil && i == f.StepErrAt {
		return arena.StepResult{}, f.StepErr
	}
	if i >= len(f.Results) {
		return arena.StepResult{Truncated: true, Info: arena.Info{}}, nil
	}
	return f.Results[i], nil
}

func (f *FakeEnv) Render() (*arena.Frame, error) {
	f.Renders++
	return nil, nil
}

func (f *FakeEnv) Close() error {
	f.Closes++
	return nil
}

// Maker returns an arena.Maker that hands out env and records its calls
func Maker(env arena.Env, calls *[]MakeCall) arena.Maker {
	return func(gameID string, settings arena.EnvironmentSettingsMultiAgent, opts ...arena.MakeOption) (arena.Env, error) {
		var p arena.MakeParams
		for _, opt := range opts {
			opt(&p)
		}
		*calls = append(*calls, MakeCall{GameID: gameID, Settings: settings, Params: p})
		return env, nil
	}
}

// Running returns n results that do not end the episode
func Running(n int) []arena.StepResult {
	out := make([]arena.StepResult, n)
	for i := range out {
		out[i] = arena.StepResult{
			Observation: arena.Observation{Round: 1, Timer: 99 - i},
			Reward:      arena.Rewards{arena.Agent0: 0, arena.Agent1: 0},
			Info:        arena.Info{"step": i},
		}
	}
	return out
}
