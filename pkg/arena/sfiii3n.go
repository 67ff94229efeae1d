package arena

import (
	"fmt"
	"io"
	"math/rand"
	"slices"

	"go.uber.org/zap"
)

const GameSFIII3N = "sfiii3n"

const (
	nativeHeight   = 224
	nativeWidth    = 384
	nativeChannels = 3

	maxHealth      = 160
	roundSeconds   = 99
	framesPerSec   = 60
	winsToFinish   = 2
	maxRounds      = 5
	maxEpisodeStep = 6000

	defaultStepRatio = 6

	walkSpeed   = 6
	arenaMargin = 24
	minDistance = 32
	jumpSteps   = 4
	minOutfit   = 1
	maxOutfit   = 7
)

// SFIII3NCharacters is the selectable roster
var SFIII3NCharacters = []string{
	"Alex", "Twelve", "Hugo", "Sean", "Makoto", "Elena", "Ibuki", "Chun-Li", "Dudley",
	"Necro", "Q", "Oro", "Urien", "Remy", "Ryu", "Gouki", "Yun", "Yang", "Ken",
}

type attack struct {
	reach    int
	damage   int
	cooldown int
	low      bool // dodged by jumping
	high     bool // dodged by crouching
}

var attacks = map[int]attack{
	LowPunch:    {reach: 48, damage: 4, cooldown: 1, low: true},
	MediumPunch: {reach: 56, damage: 8, cooldown: 2},
	HighPunch:   {reach: 64, damage: 12, cooldown: 3, high: true},
	LowKick:     {reach: 56, damage: 6, cooldown: 1, low: true},
	MediumKick:  {reach: 64, damage: 10, cooldown: 2},
	HighKick:    {reach: 72, damage: 14, cooldown: 3, high: true},
}

type fighter struct {
	x        int
	health   int
	jump     int
	crouch   bool
	block    bool
	cooldown int
}

// sfiii3n simulates the two-player mode of Street Fighter III 3rd Strike
type sfiii3n struct {
	settings   EnvironmentSettingsMultiAgent
	renderMode RenderMode
	out        io.Writer
	log        *zap.Logger
	rec        *recorder

	rng       *rand.Rand
	requested [2]string
	outfits   [2]int
	active    [2]string

	fighters   [2]fighter
	wins       [2]int
	round      int
	timer      int
	tick       int
	steps      int
	frame      Frame
	started    bool
	done       bool
	closed     bool
	splashShow bool
}

func newSFIII3N(settings EnvironmentSettingsMultiAgent, params *MakeParams) (*sfiii3n, error) {
	for i, space := range settings.ActionSpace {
		if space != Discrete {
			return nil, fmt.Errorf("%w: agent %d uses %s", ErrUnsupportedActionSpace, i, space)
		}
	}
	h, w, c := settings.FrameShape[0], settings.FrameShape[1], settings.FrameShape[2]
	if h < 0 || w < 0 || (c != 0 && c != 1 && c != 3) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrameShape, settings.FrameShape)
	}
	if settings.StepRatio <= 0 {
		settings.StepRatio = defaultStepRatio
	}

	e := &sfiii3n{
		settings:   settings,
		renderMode: params.RenderMode,
		out:        params.Output,
		log:        params.Logger.With(zap.String("game", GameSFIII3N)),
		rng:        rand.New(rand.NewSource(0)),
		requested:  settings.Characters,
		outfits:    settings.Outfits,
		splashShow: settings.SplashScreen,
	}

	if params.Recording != nil {
		rec, err := openRecorder(params.Recording, GameSFIII3N)
		if err != nil {
			return nil, err
		}
		e.rec = rec
	}

	e.log.Debug("environment created",
		zap.String("render_mode", string(e.renderMode)),
		zap.Bool("recording", e.rec != nil),
	)
	return e, nil
}

func (e *sfiii3n) Reset(seed *int64, options *ResetOptions) (Observation, Info, error) {
	if e.closed {
		return Observation{}, nil, ErrClosed
	}
	if seed != nil {
		e.rng = rand.New(rand.NewSource(*seed))
	}
	if options != nil {
		if options.Characters != nil {
			e.requested = *options.Characters
		}
		if options.CharOutfits != nil {
			e.outfits = *options.CharOutfits
		}
	}

	for i := range e.requested {
		name := e.requested[i]
		if name == "" {
			name = SFIII3NCharacters[e.rng.Intn(len(SFIII3NCharacters))]
		}
		if !slices.Contains(SFIII3NCharacters, name) {
			return Observation{}, nil, fmt.Errorf("%w: %q", ErrUnknownCharacter, name)
		}
		if e.outfits[i] < minOutfit || e.outfits[i] > maxOutfit {
			return Observation{}, nil, fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidOutfit, e.outfits[i], minOutfit, maxOutfit)
		}
		e.active[i] = name
	}

	if e.splashShow && e.renderMode == RenderHuman {
		fmt.Fprintf(e.out, "=== %s: %s vs %s ===\n", GameSFIII3N, e.active[0], e.active[1])
		e.splashShow = false
	}

	if e.rec != nil && e.started && !e.done {
		if err := e.rec.endEpisode(e.steps, false, false); err != nil {
			return Observation{}, nil, err
		}
	}

	e.wins = [2]int{}
	e.round = 1
	e.steps = 0
	e.tick = 0
	e.done = false
	e.started = true
	e.startRound()
	e.frame = e.draw()

	if e.rec != nil {
		if err := e.rec.startEpisode(seed, e.active, e.outfits); err != nil {
			return Observation{}, nil, err
		}
	}

	e.log.Debug("episode reset",
		zap.Strings("characters", e.active[:]),
		zap.Ints("outfits", e.outfits[:]),
	)
	return e.observation(), Info{"round": e.round, "stage": 1}, nil
}

func (e *sfiii3n) startRound() {
	e.fighters[0] = fighter{x: nativeWidth / 4, health: maxHealth}
	e.fighters[1] = fighter{x: nativeWidth * 3 / 4, health: maxHealth}
	e.timer = roundSeconds
}

func (e *sfiii3n) Step(actions Actions) (StepResult, error) {
	if e.closed {
		return StepResult{}, ErrClosed
	}
	if !e.started || e.done {
		return StepResult{}, ErrEpisodeDone
	}
	if err := validateActions(actions); err != nil {
		return StepResult{}, err
	}

	before := [2]int{e.fighters[0].health, e.fighters[1].health}
	e.move(actions)
	e.strike(actions)

	e.steps++
	e.tick += e.settings.StepRatio
	stepsPerSecond := framesPerSec / e.settings.StepRatio
	if stepsPerSecond < 1 {
		stepsPerSecond = 1
	}
	if e.steps%stepsPerSecond == 0 && e.timer > 0 {
		e.timer--
	}

	lost := [2]int{before[0] - e.fighters[0].health, before[1] - e.fighters[1].health}
	r := float64(lost[1]-lost[0]) / maxHealth
	reward := Rewards{Agent0: r, Agent1: -r}

	info := Info{"round": e.round, "stage": 1, "round_done": false, "game_done": false}
	terminated := false
	if e.fighters[0].health <= 0 || e.fighters[1].health <= 0 || e.timer == 0 {
		info["round_done"] = true
		switch {
		case e.fighters[0].health > e.fighters[1].health:
			e.wins[0]++
		case e.fighters[1].health > e.fighters[0].health:
			e.wins[1]++
		}
		if e.wins[0] >= winsToFinish || e.wins[1] >= winsToFinish {
			terminated = true
			info["game_done"] = true
		} else {
			e.round++
			e.startRound()
		}
	}
	truncated := !terminated && (e.round > maxRounds || e.steps >= maxEpisodeStep)
	e.done = terminated || truncated

	e.frame = e.draw()
	obs := e.observation()
	if e.rec != nil {
		if err := e.rec.recordStep(actions, reward, obs); err != nil {
			return StepResult{}, err
		}
		if e.done {
			if err := e.rec.endEpisode(e.steps, terminated, truncated); err != nil {
				return StepResult{}, err
			}
		}
	}

	return StepResult{
		Observation: obs,
		Reward:      reward,
		Terminated:  terminated,
		Truncated:   truncated,
		Info:        info,
	}, nil
}

func validateActions(actions Actions) error {
	if len(actions) != len(AgentIDs) {
		return fmt.Errorf("%w: want %d entries, got %d", ErrInvalidActions, len(AgentIDs), len(actions))
	}
	for _, id := range AgentIDs {
		a, ok := actions[id]
		if !ok {
			return fmt.Errorf("%w: missing %s", ErrInvalidActions, id)
		}
		if a < 0 || a >= NumDiscreteActions {
			return fmt.Errorf("%w: %s=%d out of range", ErrInvalidActions, id, a)
		}
	}
	return nil
}

// facing returns +1 when fighter i faces right
func (e *sfiii3n) facing(i int) int {
	if e.fighters[i].x <= e.fighters[1-i].x {
		return 1
	}
	return -1
}

func (e *sfiii3n) move(actions Actions) {
	for i, id := range AgentIDs {
		f := &e.fighters[i]
		a := actions[id]
		dx := 0
		switch a {
		case MoveLeft, MoveUpLeft, MoveDownLeft:
			dx = -1
		case MoveRight, MoveUpRight, MoveDownRight:
			dx = 1
		}
		f.crouch = a == MoveDown || a == MoveDownLeft || a == MoveDownRight
		if f.jump > 0 {
			f.jump--
		} else if a == MoveUp || a == MoveUpLeft || a == MoveUpRight {
			f.jump = jumpSteps
		}
		f.block = dx != 0 && dx != e.facing(i)
		if f.cooldown > 0 {
			f.cooldown--
		}
		f.x += dx * walkSpeed
		f.x = max(arenaMargin, min(nativeWidth-arenaMargin, f.x))
	}

	// push apart when too close
	d := e.fighters[1].x - e.fighters[0].x
	if d < 0 {
		d = -d
	}
	if d < minDistance {
		push := (minDistance - d + 1) / 2
		left, right := 0, 1
		if e.fighters[0].x > e.fighters[1].x {
			left, right = 1, 0
		}
		e.fighters[left].x = max(arenaMargin, e.fighters[left].x-push)
		e.fighters[right].x = min(nativeWidth-arenaMargin, e.fighters[right].x+push)
	}
}

func (e *sfiii3n) strike(actions Actions) {
	var dmg [2]int
	dist := e.fighters[1].x - e.fighters[0].x
	if dist < 0 {
		dist = -dist
	}
	for i, id := range AgentIDs {
		atk, ok := attacks[actions[id]]
		f := &e.fighters[i]
		if !ok || f.cooldown > 0 {
			continue
		}
		f.cooldown = atk.cooldown
		if dist > atk.reach {
			continue
		}
		def := e.fighters[1-i]
		if (atk.low && def.jump > 0) || (atk.high && def.crouch) {
			continue
		}
		hit := atk.damage + e.rng.Intn(3)
		if def.block {
			hit /= 4
		}
		dmg[1-i] += hit
	}
	for i := range e.fighters {
		e.fighters[i].health = max(0, e.fighters[i].health-dmg[i])
	}
}

func (e *sfiii3n) observation() Observation {
	agents := make(map[string]AgentState, len(AgentIDs))
	for i, id := range AgentIDs {
		agents[id] = AgentState{
			Side:      i,
			Wins:      e.wins[i],
			Character: e.active[i],
			Outfit:    e.outfits[i],
			Health:    e.fighters[i].health,
		}
	}
	return Observation{
		Frame:  e.frame,
		Stage:  1,
		Round:  e.round,
		Timer:  e.timer,
		Agents: agents,
	}
}

func (e *sfiii3n) Render() (*Frame, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if e.renderMode == RenderHuman {
		_, err := fmt.Fprintln(e.out, e.ascii())
		return nil, err
	}
	f := e.frame
	f.Pix = slices.Clone(e.frame.Pix)
	return &f, nil
}

func (e *sfiii3n) Close() error {
	if e.closed {
		return ErrClosed
	}
	e.closed = true
	e.log.Debug("environment closed", zap.Int("steps", e.steps))
	if e.rec == nil {
		return nil
	}
	if e.started && !e.done {
		if err := e.rec.endEpisode(e.steps, false, false); err != nil {
			e.rec.close()
			return err
		}
	}
	return e.rec.close()
}
