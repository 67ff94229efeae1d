package environment

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/boristopalov/colosseum/internal/arenatest"
	"github.com/boristopalov/colosseum/pkg/arena"
	"github.com/boristopalov/colosseum/pkg/config"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func TestNewSessionWithoutRecording(t *testing.T) {
	env := &arenatest.FakeEnv{}
	var calls []arenatest.MakeCall
	cfg := config.Default()
	cfg.Seed = 1234

	s, err := NewSession(cfg, WithMaker(arenatest.Maker(env, &calls)), WithOutput(io.Discard))
	require.NoError(t, err)

	require.Len(t, calls, 1)
	require.Equal(t, "sfiii3n", calls[0].GameID)
	require.Equal(t, arena.RenderRGBArray, calls[0].Params.RenderMode)
	require.Nil(t, calls[0].Params.Recording)
	require.Equal(t, cfg.Settings(), calls[0].Settings)
	require.Nil(t, s.Recording)

	require.Len(t, env.Resets, 1)
	require.NotNil(t, env.Resets[0].Seed)
	require.EqualValues(t, 1234, *env.Resets[0].Seed)
	require.Nil(t, env.Resets[0].Options)
	require.Equal(t, 99, s.Observation.Timer)
	require.Equal(t, 1, s.Info["reset"])
	require.NotEmpty(t, s.ID)
}

func TestNewSessionHumanRenderWithRecording(t *testing.T) {
	env := &arenatest.FakeEnv{}
	var calls []arenatest.MakeCall
	cfg := config.Default()
	cfg.Render = true
	cfg.SaveGame = true
	cfg.RecordingRoot = "/recordings"

	s, err := NewSession(cfg,
		WithMaker(arenatest.Maker(env, &calls)),
		WithClock(fixedClock),
	)
	require.NoError(t, err)
	require.Equal(t, arena.RenderHuman, calls[0].Params.RenderMode)
	require.NotNil(t, calls[0].Params.Recording)
	require.Equal(t,
		filepath.Join("/recordings", "diambra", "episode_recording", "sfiii3n", "-", "20240501120000"),
		calls[0].Params.Recording.DatasetPath,
	)
	require.Equal(t, "llm-colosseum", calls[0].Params.Recording.Username)
	require.Same(t, calls[0].Params.Recording, s.Recording)
}

func TestNewSessionPropagatesErrors(t *testing.T) {
	t.Run("maker", func(t *testing.T) {
		boom := errors.New("no roms")
		maker := func(string, arena.EnvironmentSettingsMultiAgent, ...arena.MakeOption) (arena.Env, error) {
			return nil, boom
		}
		_, err := NewSession(config.Default(), WithMaker(maker))
		require.ErrorIs(t, err, boom)
	})

	t.Run("reset", func(t *testing.T) {
		env := &arenatest.FakeEnv{ResetErr: arena.ErrUnknownCharacter}
		var calls []arenatest.MakeCall
		_, err := NewSession(config.Default(), WithMaker(arenatest.Maker(env, &calls)))
		require.ErrorIs(t, err, arena.ErrUnknownCharacter)
		require.Equal(t, 1, env.Closes)
	})

	t.Run("real environment rejects unknown character", func(t *testing.T) {
		cfg := config.Default()
		cfg.Characters[1] = "Balrog"
		_, err := NewSession(cfg, WithOutput(io.Discard))
		require.ErrorIs(t, err, arena.ErrUnknownCharacter)
	})
}

func TestSeedDeterminesInitialObservation(t *testing.T) {
	cfg := config.Default()
	cfg.Characters = [2]string{"", ""}

	a, err := NewSession(cfg, WithOutput(io.Discard))
	require.NoError(t, err)
	defer a.Close()
	b, err := NewSession(cfg, WithOutput(io.Discard))
	require.NoError(t, err)
	defer b.Close()

	require.Equal(t, a.Observation, b.Observation)
	require.Equal(t, a.Info, b.Info)
}
