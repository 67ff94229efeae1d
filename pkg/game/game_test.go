package game

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boristopalov/colosseum/internal/arenatest"
	"github.com/boristopalov/colosseum/pkg/agent"
	"github.com/boristopalov/colosseum/pkg/arena"
	"github.com/boristopalov/colosseum/pkg/config"
	"github.com/boristopalov/colosseum/pkg/environment"
)

// fakeController plays a fixed action and records its calls
type fakeController struct {
	action   int
	planErr  error
	observed []arena.Actions
	plans    int
	acts     int
}

func (c *fakeController) Observe(obs arena.Observation, actions arena.Actions) {
	c.observed = append(c.observed, actions)
}

func (c *fakeController) Plan(ctx context.Context) error {
	c.plans++
	return c.planErr
}

func (c *fakeController) Act() int {
	c.acts++
	return c.action
}

func fakePlayers() (*agent.Player, *agent.Player, *fakeController, *fakeController) {
	c1 := &fakeController{action: arena.MoveRight}
	c2 := &fakeController{action: arena.LowKick}
	p1 := agent.NewPlayer1("Player 1", "fake")
	p1.Controller = c1
	p2 := agent.NewPlayer2("Player 2", "fake")
	p2.Controller = c2
	return p1, p2, c1, c2
}

func newTestGame(t *testing.T, cfg config.MatchConfig, env *arenatest.FakeEnv) (*Game, *fakeController, *fakeController, *[]arenatest.MakeCall) {
	t.Helper()
	p1, p2, c1, c2 := fakePlayers()
	var calls []arenatest.MakeCall
	g, err := New(context.Background(), cfg,
		WithPlayers(p1, p2),
		WithSessionOptions(environment.WithMaker(arenatest.Maker(env, &calls))),
	)
	require.NoError(t, err)
	return g, c1, c2, &calls
}

func TestRunUntilTerminated(t *testing.T) {
	results := append(arenatest.Running(3), arena.StepResult{
		Reward:     arena.Rewards{arena.Agent0: 1, arena.Agent1: -1},
		Terminated: true,
		Info:       arena.Info{"game_done": true},
	})
	env := &arenatest.FakeEnv{Results: results}
	g, c1, c2, calls := newTestGame(t, config.Default(), env)

	res, err := g.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, res.Steps)
	require.True(t, res.Terminated)
	require.False(t, res.Truncated)
	require.Equal(t, 1.0, res.Reward[arena.Agent0])

	// every step carries exactly one action per agent id
	require.Len(t, env.Steps, 4)
	for _, actions := range env.Steps {
		require.Len(t, actions, 2)
		require.Equal(t, arena.MoveRight, actions[arena.Agent0])
		require.Equal(t, arena.LowKick, actions[arena.Agent1])
	}

	// initial seeded reset, then exactly one reset with the next match options
	require.Len(t, env.Resets, 2)
	require.EqualValues(t, 42, *env.Resets[0].Seed)
	final := env.Resets[1]
	require.Nil(t, final.Seed)
	require.Equal(t, [2]string{"", ""}, *final.Options.Characters)
	require.Equal(t, [2]int{5, 5}, *final.Options.CharOutfits)
	require.Equal(t, 1, env.Closes)

	// the first observation has no action context, none after the episode ends
	for _, c := range []*fakeController{c1, c2} {
		require.Len(t, c.observed, 4)
		require.Empty(t, c.observed[0])
		require.Len(t, c.observed[1], 2)
		require.Equal(t, 4, c.plans)
		require.Equal(t, 4, c.acts)
	}

	require.Zero(t, env.Renders)
	require.Nil(t, (*calls)[0].Params.Recording)

	st := g.GetStatus()
	require.False(t, st.Running)
	require.Equal(t, 4, st.Steps)
	require.False(t, st.EndTime.Before(st.StartTime))

	_, err = g.Run(context.Background())
	require.ErrorIs(t, err, ErrFinished)
	require.Equal(t, 1, env.Closes)
}

func TestRunStopsOnTruncation(t *testing.T) {
	results := append(arenatest.Running(1), arena.StepResult{Truncated: true, Info: arena.Info{}})
	env := &arenatest.FakeEnv{Results: results}
	g, _, _, _ := newTestGame(t, config.Default(), env)

	res, err := g.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, res.Steps)
	require.True(t, res.Truncated)
	require.Len(t, env.Resets, 2)
	require.Equal(t, 1, env.Closes)
}

func TestRunRendersEachStep(t *testing.T) {
	env := &arenatest.FakeEnv{Results: arenatest.Running(2)}
	cfg := config.Default()
	cfg.Render = true
	g, _, _, calls := newTestGame(t, cfg, env)

	res, err := g.Run(context.Background())
	require.NoError(t, err)
	// two running results, then the fake truncates
	require.Equal(t, 3, res.Steps)
	require.Equal(t, 3, env.Renders)
	require.Equal(t, arena.RenderHuman, (*calls)[0].Params.RenderMode)
}

func TestRunPropagatesErrors(t *testing.T) {
	t.Run("step", func(t *testing.T) {
		boom := errors.New("emulator crashed")
		env := &arenatest.FakeEnv{Results: arenatest.Running(5), StepErr: boom, StepErrAt: 2}
		g, _, _, _ := newTestGame(t, config.Default(), env)

		res, err := g.Run(context.Background())
		require.ErrorIs(t, err, boom)
		require.Equal(t, 2, res.Steps)
		require.Len(t, env.Resets, 1)
		require.Equal(t, 1, env.Closes)
	})

	t.Run("plan", func(t *testing.T) {
		env := &arenatest.FakeEnv{Results: arenatest.Running(5)}
		g, _, c2, _ := newTestGame(t, config.Default(), env)
		c2.planErr = context.DeadlineExceeded

		_, err := g.Run(context.Background())
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.Empty(t, env.Steps)
		require.Equal(t, 1, env.Closes)
	})
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Players[1].Model = "nobody:model"
	_, err := New(context.Background(), cfg, WithSessionOptions(environment.WithOutput(io.Discard)))
	require.Error(t, err)
}

func TestScriptedMatchWithRecording(t *testing.T) {
	cfg := config.Default()
	cfg.FrameShape = [3]int{56, 96, 3}
	cfg.SaveGame = true
	cfg.RecordingRoot = t.TempDir()

	g, err := New(context.Background(), cfg, WithSessionOptions(environment.WithOutput(io.Discard)))
	require.NoError(t, err)
	p1, p2 := g.Players()
	require.Equal(t, "Player 1", p1.Nickname)
	require.Equal(t, 1, p2.Side)
	dataset := g.Session().Recording.DatasetPath

	res, err := g.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Terminated || res.Truncated)
	require.Positive(t, res.Steps)

	episodes, err := arena.LoadEpisodes(dataset)
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	played, next := episodes[0], episodes[1]
	require.Equal(t, res.Steps, played.Steps)
	require.Equal(t, res.Terminated, played.Terminated)
	require.Equal(t, [2]int{1, 3}, played.Outfits)
	require.Equal(t, [2]int{5, 5}, next.Outfits)
	require.Zero(t, next.Steps)
	require.NotNil(t, next.EndedAt)
}
