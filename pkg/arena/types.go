package arena

import (
	"fmt"
	"sort"
	"strings"
)

// Agent identifiers used to address each player's action in Step
const (
	Agent0 = "agent_0"
	Agent1 = "agent_1"
)

// AgentIDs lists the agent identifiers by side
var AgentIDs = [2]string{Agent0, Agent1}

// Discrete action ids. 0 is shared by "no move" and "no attack".
const (
	NoOp = iota
	MoveLeft
	MoveUpLeft
	MoveUp
	MoveUpRight
	MoveRight
	MoveDownRight
	MoveDown
	MoveDownLeft
	LowPunch
	MediumPunch
	HighPunch
	LowKick
	MediumKick
	HighKick

	NumDiscreteActions
)

var actionNames = [NumDiscreteActions]string{
	"NoOp", "Left", "UpLeft", "Up", "UpRight", "Right", "DownRight", "Down", "DownLeft",
	"LowPunch", "MediumPunch", "HighPunch", "LowKick", "MediumKick", "HighKick",
}

// ActionName returns a readable name for a discrete action id
func ActionName(a int) string {
	if a < 0 || a >= NumDiscreteActions {
		return fmt.Sprintf("Invalid(%d)", a)
	}
	return actionNames[a]
}

// Actions maps an agent identifier to its discrete action
type Actions map[string]int

func (a Actions) String() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%s", k, ActionName(a[k])))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Rewards maps an agent identifier to the reward it received
type Rewards map[string]float64

// Info carries auxiliary environment data
type Info map[string]any

// Frame is a row-major pixel buffer of Height x Width x Channels bytes
type Frame struct {
	Height   int
	Width    int
	Channels int
	Pix      []byte
}

// At returns the channel values at (y, x)
func (f *Frame) At(y, x int) []byte {
	i := (y*f.Width + x) * f.Channels
	return f.Pix[i : i+f.Channels]
}

// AgentState is the RAM state exposed for one fighter
type AgentState struct {
	Side      int
	Wins      int
	Character string
	Outfit    int
	Health    int
}

// Observation is what the environment exposes after a reset or step
type Observation struct {
	Frame  Frame
	Stage  int
	Round  int
	Timer  int
	Agents map[string]AgentState
}

// StepResult is the outcome of a single environment step
type StepResult struct {
	Observation Observation
	Reward      Rewards
	Terminated  bool
	Truncated   bool
	Info        Info
}

// Done reports whether the episode ended
func (r StepResult) Done() bool {
	return r.Terminated || r.Truncated
}
