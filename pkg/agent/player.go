package agent

import (
	"context"

	"github.com/boristopalov/colosseum/pkg/arena"
)

// Controller turns observations into actions for one fighter
type Controller interface {
	// Observe records the latest observation and the actions that led to it
	Observe(obs arena.Observation, actions arena.Actions)
	// Plan prepares the next actions from internal state
	Plan(ctx context.Context) error
	// Act returns the next discrete action
	Act() int
}

// Outfit colors of Ken used to find each fighter on screen
var (
	KenRed   = arena.OutfitPalette[1]
	KenGreen = arena.OutfitPalette[3]
)

// colorScheme is {own color, enemy color} per side
var colorScheme = [2][2]arena.RGB{
	{KenRed, KenGreen},
	{KenGreen, KenRed},
}

// Player is one side of the match
type Player struct {
	Nickname   string
	Model      string
	Side       int
	Color      arena.RGB
	EnemyColor arena.RGB
	Controller Controller
}

// AgentID is the identifier the player's actions are submitted under
func (p *Player) AgentID() string {
	return arena.AgentIDs[p.Side]
}

// NewPlayer1 creates the left player: side 0, red Ken against green Ken
func NewPlayer1(nickname, model string, opts ...RobotOption) *Player {
	return newPlayer(0, nickname, model, opts)
}

// NewPlayer2 creates the right player: side 1, green Ken against red Ken
func NewPlayer2(nickname, model string, opts ...RobotOption) *Player {
	return newPlayer(1, nickname, model, opts)
}

func newPlayer(side int, nickname, model string, opts []RobotOption) *Player {
	color, enemy := colorScheme[side][0], colorScheme[side][1]
	robot := NewRobot(side, color, enemy, opts...)
	return &Player{
		Nickname:   nickname,
		Model:      model,
		Side:       side,
		Color:      color,
		EnemyColor: enemy,
		Controller: robot,
	}
}
