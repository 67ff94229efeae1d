package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/boristopalov/colosseum/pkg/agent"
	"github.com/boristopalov/colosseum/pkg/arena"
	"github.com/boristopalov/colosseum/pkg/config"
	"github.com/boristopalov/colosseum/pkg/environment"
	"github.com/boristopalov/colosseum/pkg/providers"
)

var ErrFinished = errors.New("game already finished")

// Episode settings applied by the reset that follows the end of a match
var (
	nextCharacters = [2]string{"", ""}
	nextOutfits    = [2]int{5, 5}
)

// Status reports the progress of a game
type Status struct {
	Running   bool
	StartTime time.Time
	EndTime   time.Time
	Steps     int
}

// Result is the outcome of a finished match
type Result struct {
	Steps      int
	Reward     arena.Rewards
	Terminated bool
	Truncated  bool
	Info       arena.Info
}

// Game drives one match between two players
type Game struct {
	cfg      config.MatchConfig
	session  *environment.Session
	player1  *agent.Player
	player2  *agent.Player
	log      *zap.Logger
	finished bool

	mu     sync.RWMutex
	status Status
}

type GameParams struct {
	Player1        *agent.Player
	Player2        *agent.Player
	SessionOptions []environment.SessionOption
	Logger         *zap.Logger
}

type GameOption func(*GameParams)

// WithPlayers replaces the players built from the configuration
func WithPlayers(p1, p2 *agent.Player) GameOption {
	return func(p *GameParams) {
		p.Player1 = p1
		p.Player2 = p2
	}
}

func WithSessionOptions(opts ...environment.SessionOption) GameOption {
	return func(p *GameParams) {
		p.SessionOptions = append(p.SessionOptions, opts...)
	}
}

func WithLogger(l *zap.Logger) GameOption {
	return func(p *GameParams) {
		p.Logger = l
	}
}

// New opens the session for cfg and sets up both players
func New(ctx context.Context, cfg config.MatchConfig, opts ...GameOption) (*Game, error) {
	params := &GameParams{Logger: zap.NewNop()}
	for _, opt := range opts {
		opt(params)
	}

	sessionOpts := append([]environment.SessionOption{environment.WithLogger(params.Logger)}, params.SessionOptions...)
	session, err := environment.NewSession(cfg, sessionOpts...)
	if err != nil {
		return nil, err
	}

	p1, p2 := params.Player1, params.Player2
	if p1 == nil {
		if p1, err = newPlayer(ctx, cfg, 0, params.Logger); err != nil {
			session.Close()
			return nil, err
		}
	}
	if p2 == nil {
		if p2, err = newPlayer(ctx, cfg, 1, params.Logger); err != nil {
			session.Close()
			return nil, err
		}
	}

	return &Game{
		cfg:     cfg,
		session: session,
		player1: p1,
		player2: p2,
		log:     params.Logger.With(zap.String("session", session.ID)),
	}, nil
}

// newPlayer builds the player for a side with a robot driven by its model tag
func newPlayer(ctx context.Context, cfg config.MatchConfig, side int, log *zap.Logger) (*agent.Player, error) {
	pc := cfg.Players[side]
	client, model, err := providers.FromModelTag(ctx, pc.Model,
		providers.WithSeed(cfg.Seed+int64(side)),
		providers.WithChoices(agent.MoveNames()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", pc.Nickname, err)
	}
	opts := []agent.RobotOption{
		agent.WithClient(client),
		agent.WithModel(agent.ModelInfo{Id: model}),
		agent.WithAgentId(arena.AgentIDs[side]),
		agent.WithCharacter(cfg.Characters[side]),
		agent.WithLogger(log),
	}
	if side == 0 {
		return agent.NewPlayer1(pc.Nickname, pc.Model, opts...), nil
	}
	return agent.NewPlayer2(pc.Nickname, pc.Model, opts...), nil
}

func (g *Game) Players() (*agent.Player, *agent.Player) {
	return g.player1, g.player2
}

func (g *Game) Session() *environment.Session {
	return g.session
}

func (g *Game) GetStatus() Status {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.status
}

// Run plays one episode: players observe, plan and act, the environment
// steps, until the episode is terminated or truncated. The environment is
// then reset for the next match and the session is closed.
func (g *Game) Run(ctx context.Context) (res Result, err error) {
	if g.finished {
		return Result{}, ErrFinished
	}
	g.finished = true

	g.mu.Lock()
	g.status.Running = true
	g.status.StartTime = time.Now()
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.status.Running = false
		g.status.EndTime = time.Now()
		g.mu.Unlock()

		if cerr := g.session.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close session: %w", cerr)
		}
	}()

	g.log.Info("match started",
		zap.String("player_1", g.player1.Nickname),
		zap.String("player_1_model", g.player1.Model),
		zap.String("player_2", g.player2.Nickname),
		zap.String("player_2_model", g.player2.Model),
	)

	g.player1.Controller.Observe(g.session.Observation, arena.Actions{})
	g.player2.Controller.Observe(g.session.Observation, arena.Actions{})

	for {
		if g.cfg.Render {
			if _, err := g.session.Env.Render(); err != nil {
				return res, fmt.Errorf("failed to render: %w", err)
			}
		}

		if err := g.player1.Controller.Plan(ctx); err != nil {
			return res, fmt.Errorf("%s failed to plan: %w", g.player1.Nickname, err)
		}
		if err := g.player2.Controller.Plan(ctx); err != nil {
			return res, fmt.Errorf("%s failed to plan: %w", g.player2.Nickname, err)
		}

		actions := arena.Actions{
			g.player1.AgentID(): g.player1.Controller.Act(),
			g.player2.AgentID(): g.player2.Controller.Act(),
		}
		step, err := g.session.Env.Step(actions)
		if err != nil {
			return res, fmt.Errorf("step %d failed: %w", res.Steps+1, err)
		}
		res.Steps++
		res.Reward = step.Reward
		res.Terminated = step.Terminated
		res.Truncated = step.Truncated
		res.Info = step.Info

		g.mu.Lock()
		g.status.Steps = res.Steps
		g.mu.Unlock()

		done := step.Done()
		g.log.Debug("step",
			zap.Int("step", res.Steps),
			zap.Stringer("actions", actions),
			zap.Any("reward", step.Reward),
			zap.Bool("done", done),
			zap.Any("info", step.Info),
		)

		g.session.Observation = step.Observation
		g.session.Info = step.Info

		if done {
			characters, outfits := nextCharacters, nextOutfits
			obs, info, err := g.session.Env.Reset(nil, &arena.ResetOptions{
				Characters:  &characters,
				CharOutfits: &outfits,
			})
			if err != nil {
				return res, fmt.Errorf("failed to reset after episode: %w", err)
			}
			g.session.Observation = obs
			g.session.Info = info
			break
		}

		g.player1.Controller.Observe(step.Observation, actions)
		g.player2.Controller.Observe(step.Observation, actions)
	}

	g.log.Info("match finished",
		zap.Int("steps", res.Steps),
		zap.Bool("terminated", res.Terminated),
		zap.Bool("truncated", res.Truncated),
		zap.Any("reward", res.Reward),
	)
	return res, nil
}
