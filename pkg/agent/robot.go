package agent

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/boristopalov/colosseum/pkg/arena"
	"github.com/boristopalov/colosseum/pkg/memory"
	"github.com/boristopalov/colosseum/pkg/providers"
)

const (
	systemPrompt = `You are the best and most aggressive Street Fighter III 3rd strike player in the world.
Your character is %s. Your goal is to beat the other opponent. You respond with a bullet point list of moves.`

	contextPromptTemplate = `%s
The moves you can use are:
%s
----
Reply with a bullet point list of moves. The format should be: ` + "`- <name of the move>`" + ` separated by a new line.
Example if the opponent is close:
- Move closer
- Medium Punch

Example if the opponent is far:
- Fireball
- Move closer`

	// fraction of the frame width under which the opponent counts as close
	closeDistance = 0.2
	historySize   = 10
)

type ModelInfo struct {
	Id string // e.g. "gpt-4o-mini"
}

// observed is one entry of the robot's history
type observed struct {
	obs      arena.Observation
	actions  arena.Actions
	ownX     float64 // fraction of frame width, -1 when not found
	enemyX   float64
	ownHP    int
	enemyHP  int
	timer    int
	hasState bool
}

// Robot is a controller that asks a language model for moves and replays
// their button sequences one step at a time
type Robot struct {
	id         string
	character  string
	side       int
	color      arena.RGB
	enemyColor arena.RGB
	model      ModelInfo
	client     providers.Client
	history    *memory.Memory[observed]
	nextSteps  []int
	fallbacks  int
	log        *zap.Logger
}

type RobotParams struct {
	Client    providers.Client
	Model     ModelInfo
	AgentID   string
	Character string
	Logger    *zap.Logger
}

type RobotOption func(*RobotParams)

// WithClient sets the model client. Without one the robot plays a fixed
// close-in routine.
func WithClient(c providers.Client) RobotOption {
	return func(p *RobotParams) {
		p.Client = c
	}
}

func WithModel(model ModelInfo) RobotOption {
	return func(p *RobotParams) {
		p.Model = model
	}
}

func WithAgentId(id string) RobotOption {
	return func(p *RobotParams) {
		p.AgentID = id
	}
}

func WithCharacter(name string) RobotOption {
	return func(p *RobotParams) {
		p.Character = name
	}
}

func WithLogger(l *zap.Logger) RobotOption {
	return func(p *RobotParams) {
		p.Logger = l
	}
}

func defaultRobotParams() *RobotParams {
	return &RobotParams{
		Model:     ModelInfo{Id: providers.DefaultOpenAIModel},
		AgentID:   "robot-" + uuid.New().String(),
		Character: "Ken",
		Logger:    zap.NewNop(),
	}
}

// NewRobot creates a robot for a side, recognising itself and its opponent by color
func NewRobot(side int, color, enemyColor arena.RGB, opts ...RobotOption) *Robot {
	params := defaultRobotParams()
	for _, opt := range opts {
		opt(params)
	}

	return &Robot{
		id:         params.AgentID,
		character:  params.Character,
		side:       side,
		color:      color,
		enemyColor: enemyColor,
		model:      params.Model,
		client:     params.Client,
		history:    memory.NewMemory[observed](historySize),
		log:        params.Logger.With(zap.String("robot", params.AgentID), zap.Int("side", side)),
	}
}

func (r *Robot) GetID() string {
	return r.id
}

func (r *Robot) GetModel() ModelInfo {
	return r.model
}

// Observe implements Controller
func (r *Robot) Observe(obs arena.Observation, actions arena.Actions) {
	o := observed{
		obs:     obs,
		actions: actions,
		ownX:    locate(&obs.Frame, r.color),
		enemyX:  locate(&obs.Frame, r.enemyColor),
		timer:   obs.Timer,
	}
	if own, ok := obs.Agents[arena.AgentIDs[r.side]]; ok {
		o.ownHP = own.Health
		o.hasState = true
	}
	if enemy, ok := obs.Agents[arena.AgentIDs[1-r.side]]; ok {
		o.enemyHP = enemy.Health
	}
	r.history.Store(o)
}

// Plan implements Controller. It only consults the model once the queued
// button sequence has been played out.
func (r *Robot) Plan(ctx context.Context) error {
	if len(r.nextSteps) > 0 {
		return nil
	}

	if r.client == nil {
		r.enqueue(r.fallbackMove())
		return nil
	}

	prompt := fmt.Sprintf(systemPrompt, r.character) + "\n" +
		fmt.Sprintf(contextPromptTemplate, r.context(), "- "+strings.Join(MoveNames(), "\n- "))
	response, err := r.client.Complete(ctx, r.model.Id, prompt)
	if err != nil {
		return fmt.Errorf("robot %s failed to plan: %w", r.id, err)
	}

	moves := ParseMoves(response)
	if len(moves) == 0 {
		r.log.Debug("no moves in response, using fallback", zap.String("response", response))
		moves = []Move{r.fallbackMove()}
	}
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = m.Name
		r.enqueue(m)
	}
	r.log.Debug("planned moves", zap.Strings("moves", names))
	return nil
}

// Act implements Controller
func (r *Robot) Act() int {
	if len(r.nextSteps) == 0 {
		return arena.NoOp
	}
	next := r.nextSteps[0]
	r.nextSteps = r.nextSteps[1:]
	return next
}

func (r *Robot) enqueue(m Move) {
	r.nextSteps = append(r.nextSteps, m.Actions(r.facingRight())...)
}

func (r *Robot) facingRight() bool {
	last, ok := r.history.Latest()
	if !ok || last.ownX < 0 || last.enemyX < 0 {
		return r.side == 0
	}
	return last.ownX <= last.enemyX
}

// distance is the gap between the fighters as a fraction of the frame
// width, or -1 when either could not be found
func (r *Robot) distance() float64 {
	last, ok := r.history.Latest()
	if !ok || last.ownX < 0 || last.enemyX < 0 {
		return -1
	}
	return math.Abs(last.ownX - last.enemyX)
}

var fallbackRoutine = []string{"Low Kick", "Medium Punch", "High Kick", "Fireball"}

func (r *Robot) fallbackMove() Move {
	d := r.distance()
	if d < 0 || d > closeDistance {
		m, _ := LookupMove("Move Closer")
		return m
	}
	m, _ := LookupMove(fallbackRoutine[r.fallbacks%len(fallbackRoutine)])
	r.fallbacks++
	return m
}

// context describes the situation for the prompt
func (r *Robot) context() string {
	last, ok := r.history.Latest()
	if !ok {
		return "The fight has not started yet."
	}

	var sb strings.Builder
	switch d := r.distance(); {
	case d < 0:
		sb.WriteString("You cannot see your opponent.\n")
	case d <= closeDistance:
		fmt.Fprintf(&sb, "Your opponent is very close, on your %s.\n", r.opponentSide())
	default:
		fmt.Fprintf(&sb, "Your opponent is far, on your %s.\n", r.opponentSide())
	}
	if last.hasState {
		fmt.Fprintf(&sb, "Your health is %d and your opponent's health is %d. %d seconds remain.\n",
			last.ownHP, last.enemyHP, last.timer)
	}

	var own, enemy []string
	for _, h := range r.history.All() {
		if a, ok := h.actions[arena.AgentIDs[r.side]]; ok {
			own = append(own, arena.ActionName(a))
		}
		if a, ok := h.actions[arena.AgentIDs[1-r.side]]; ok {
			enemy = append(enemy, arena.ActionName(a))
		}
	}
	if len(own) > 0 {
		fmt.Fprintf(&sb, "Your last actions were: %s.\n", strings.Join(own, ", "))
		fmt.Fprintf(&sb, "Your opponent's last actions were: %s.\n", strings.Join(enemy, ", "))
	}
	return sb.String()
}

func (r *Robot) opponentSide() string {
	if r.facingRight() {
		return "right"
	}
	return "left"
}

// locate returns the mean column of pixels matching color as a fraction of
// the frame width, or -1 when no pixel matches
func locate(f *arena.Frame, color arena.RGB) float64 {
	if f.Channels != 3 || f.Width == 0 || len(f.Pix) < f.Height*f.Width*3 {
		return -1
	}
	var sum, n int
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			px := f.At(y, x)
			if px[0] == color[0] && px[1] == color[1] && px[2] == color[2] {
				sum += x
				n++
			}
		}
	}
	if n == 0 {
		return -1
	}
	return float64(sum) / float64(n) / float64(f.Width)
}
