package agent

import (
	"regexp"
	"strings"

	"github.com/boristopalov/colosseum/pkg/arena"
)

// button is a direction relative to the opponent, or an attack
type button int

const (
	forward button = iota
	back
	up
	down
	upForward
	upBack
	downForward
	downBack
	attackBase // attack buttons are attackBase + discrete action id
)

func attackButton(action int) button { return attackBase + button(action) }

// Move is a named sequence of buttons the model can ask for
type Move struct {
	Name    string
	buttons []button
}

var Moves = []Move{
	{Name: "Move Closer", buttons: []button{forward, forward, forward, forward}},
	{Name: "Move Away", buttons: []button{back, back, back, back}},
	{Name: "Jump Closer", buttons: []button{upForward, upForward}},
	{Name: "Jump Away", buttons: []button{upBack, upBack}},
	{Name: "Crouch", buttons: []button{down, down}},
	{Name: "Block", buttons: []button{back, back}},
	{Name: "Fireball", buttons: []button{down, downForward, forward, attackButton(arena.HighPunch)}},
	{Name: "Megapunch", buttons: []button{forward, down, downForward, attackButton(arena.HighPunch)}},
	{Name: "Hurricane", buttons: []button{down, downBack, back, attackButton(arena.MediumKick)}},
	{Name: "Low Punch", buttons: []button{attackButton(arena.LowPunch)}},
	{Name: "Medium Punch", buttons: []button{attackButton(arena.MediumPunch)}},
	{Name: "High Punch", buttons: []button{attackButton(arena.HighPunch)}},
	{Name: "Low Kick", buttons: []button{attackButton(arena.LowKick)}},
	{Name: "Medium Kick", buttons: []button{attackButton(arena.MediumKick)}},
	{Name: "High Kick", buttons: []button{attackButton(arena.HighKick)}},
}

// MoveNames lists the names of all moves
func MoveNames() []string {
	names := make([]string, len(Moves))
	for i, m := range Moves {
		names[i] = m.Name
	}
	return names
}

// LookupMove finds a move by name, ignoring case and surrounding space
func LookupMove(name string) (Move, bool) {
	name = strings.TrimSpace(name)
	for _, m := range Moves {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return Move{}, false
}

// Actions resolves the move into discrete action ids for a fighter facing right or left
func (m Move) Actions(facingRight bool) []int {
	out := make([]int, len(m.buttons))
	for i, b := range m.buttons {
		out[i] = b.action(facingRight)
	}
	return out
}

func (b button) action(facingRight bool) int {
	if b >= attackBase {
		return int(b - attackBase)
	}
	fwd, bwd := arena.MoveRight, arena.MoveLeft
	upFwd, upBwd := arena.MoveUpRight, arena.MoveUpLeft
	downFwd, downBwd := arena.MoveDownRight, arena.MoveDownLeft
	if !facingRight {
		fwd, bwd = bwd, fwd
		upFwd, upBwd = upBwd, upFwd
		downFwd, downBwd = downBwd, downFwd
	}
	switch b {
	case forward:
		return fwd
	case back:
		return bwd
	case up:
		return arena.MoveUp
	case down:
		return arena.MoveDown
	case upForward:
		return upFwd
	case upBack:
		return upBwd
	case downForward:
		return downFwd
	case downBack:
		return downBwd
	}
	return arena.NoOp
}

var moveLine = regexp.MustCompile(`(?m)^\s*(?:[-*]|\d+[.)])\s*([A-Za-z][A-Za-z ]*)`)

// ParseMoves extracts the known moves listed in a model response, in order
func ParseMoves(response string) []Move {
	var moves []Move
	for _, match := range moveLine.FindAllStringSubmatch(response, -1) {
		if m, ok := LookupMove(match[1]); ok {
			moves = append(moves, m)
		}
	}
	return moves
}
