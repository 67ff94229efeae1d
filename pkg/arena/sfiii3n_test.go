package arena

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testSettings() EnvironmentSettingsMultiAgent {
	return EnvironmentSettingsMultiAgent{
		RenderMode:  RenderRGBArray,
		ActionSpace: [2]SpaceType{Discrete, Discrete},
		Characters:  [2]string{"Ken", "Ken"},
		Outfits:     [2]int{1, 3},
	}
}

func seed(v int64) *int64 { return &v }

func TestResetIsDeterministicForSeed(t *testing.T) {
	settings := testSettings()
	settings.Characters = [2]string{"", ""}

	first, err := Make(GameSFIII3N, settings)
	require.NoError(t, err)
	t.Cleanup(func() { first.Close() })
	second, err := Make(GameSFIII3N, settings)
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	obs1, info1, err := first.Reset(seed(42), nil)
	require.NoError(t, err)
	obs2, info2, err := second.Reset(seed(42), nil)
	require.NoError(t, err)

	require.Equal(t, obs1, obs2)
	require.Equal(t, info1, info2)
}

func TestMakeRejectsUnknownGame(t *testing.T) {
	_, err := Make("doapp", testSettings())
	require.ErrorIs(t, err, ErrUnknownGame)
}

func TestMakeRejectsMultiDiscrete(t *testing.T) {
	settings := testSettings()
	settings.ActionSpace[1] = MultiDiscrete
	_, err := Make(GameSFIII3N, settings)
	require.ErrorIs(t, err, ErrUnsupportedActionSpace)
}

func TestResetRejectsIllegalSelections(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*EnvironmentSettingsMultiAgent)
		wantErr error
	}{
		{
			name:    "unknown character",
			modify:  func(s *EnvironmentSettingsMultiAgent) { s.Characters[0] = "Gandalf" },
			wantErr: ErrUnknownCharacter,
		},
		{
			name:    "outfit out of range",
			modify:  func(s *EnvironmentSettingsMultiAgent) { s.Outfits[1] = 9 },
			wantErr: ErrInvalidOutfit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings()
			tt.modify(&settings)
			env, err := Make(GameSFIII3N, settings)
			require.NoError(t, err)
			defer env.Close()

			_, _, err = env.Reset(seed(1), nil)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStepValidatesActions(t *testing.T) {
	env, err := Make(GameSFIII3N, testSettings())
	require.NoError(t, err)
	defer env.Close()
	_, _, err = env.Reset(seed(1), nil)
	require.NoError(t, err)

	for _, actions := range []Actions{
		{Agent0: NoOp},
		{Agent0: NoOp, "agent_2": NoOp},
		{Agent0: NoOp, Agent1: NumDiscreteActions},
		{Agent0: NoOp, Agent1: NoOp, "agent_2": NoOp},
	} {
		_, err := env.Step(actions)
		require.ErrorIs(t, err, ErrInvalidActions, "actions %v", actions)
	}
}

func TestEpisodeTerminatesAfterTwoRoundWins(t *testing.T) {
	env, err := Make(GameSFIII3N, testSettings())
	require.NoError(t, err)
	defer env.Close()
	obs, _, err := env.Reset(seed(7), nil)
	require.NoError(t, err)
	require.Equal(t, maxHealth, obs.Agents[Agent0].Health)

	// agent_0 walks in and kicks, agent_1 stands still
	var res StepResult
	for i := 0; i < maxEpisodeStep; i++ {
		action := MoveRight
		if i%2 == 1 {
			action = HighKick
		}
		res, err = env.Step(Actions{Agent0: action, Agent1: NoOp})
		require.NoError(t, err)
		require.InDelta(t, 0, res.Reward[Agent0]+res.Reward[Agent1], 1e-9)
		if res.Done() {
			break
		}
	}
	require.True(t, res.Terminated)
	require.False(t, res.Truncated)
	require.Equal(t, true, res.Info["game_done"])
	require.Equal(t, winsToFinish, res.Observation.Agents[Agent0].Wins)

	_, err = env.Step(Actions{Agent0: NoOp, Agent1: NoOp})
	require.ErrorIs(t, err, ErrEpisodeDone)
}

func TestResetOptionsOverrideSelection(t *testing.T) {
	env, err := Make(GameSFIII3N, testSettings())
	require.NoError(t, err)
	defer env.Close()
	_, _, err = env.Reset(seed(3), nil)
	require.NoError(t, err)

	obs, _, err := env.Reset(nil, &ResetOptions{
		Characters:  &[2]string{"", ""},
		CharOutfits: &[2]int{5, 5},
	})
	require.NoError(t, err)
	for _, id := range AgentIDs {
		st := obs.Agents[id]
		require.Equal(t, 5, st.Outfit)
		require.Contains(t, SFIII3NCharacters, st.Character)
	}
}

func TestFrameShape(t *testing.T) {
	settings := testSettings()
	settings.FrameShape = [3]int{112, 192, 1}
	env, err := Make(GameSFIII3N, settings)
	require.NoError(t, err)
	defer env.Close()

	obs, _, err := env.Reset(seed(1), nil)
	require.NoError(t, err)
	require.Equal(t, 112, obs.Frame.Height)
	require.Equal(t, 192, obs.Frame.Width)
	require.Equal(t, 1, obs.Frame.Channels)
	require.Len(t, obs.Frame.Pix, 112*192)

	settings.FrameShape = [3]int{0, 0, 2}
	_, err = Make(GameSFIII3N, settings)
	require.ErrorIs(t, err, ErrInvalidFrameShape)
}

func TestRenderHumanWritesStrip(t *testing.T) {
	var out strings.Builder
	settings := testSettings()
	settings.SplashScreen = true
	env, err := Make(GameSFIII3N, settings, WithRenderMode(RenderHuman), WithOutput(&out))
	require.NoError(t, err)
	defer env.Close()

	_, _, err = env.Reset(seed(1), nil)
	require.NoError(t, err)
	frame, err := env.Render()
	require.NoError(t, err)
	require.Nil(t, frame)
	require.Contains(t, out.String(), "Ken vs Ken")
	require.Contains(t, out.String(), "R1 T99")
}

func TestCloseTwice(t *testing.T) {
	env, err := Make(GameSFIII3N, testSettings())
	require.NoError(t, err)
	require.NoError(t, env.Close())
	require.True(t, errors.Is(env.Close(), ErrClosed))
}

func TestRecordingWritesEpisodes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sfiii3n", "-", "20240101000000")
	env, err := Make(GameSFIII3N, testSettings(), WithEpisodeRecording(&RecordingSettings{
		DatasetPath: dir,
		Username:    "tester",
	}))
	require.NoError(t, err)

	_, _, err = env.Reset(seed(11), nil)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := env.Step(Actions{Agent0: MoveRight, Agent1: MoveLeft})
		require.NoError(t, err)
	}
	require.NoError(t, env.Close())

	episodes, err := LoadEpisodes(dir)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	ep := episodes[0]
	require.Equal(t, GameSFIII3N, ep.Game)
	require.Equal(t, "tester", ep.Username)
	require.NotNil(t, ep.Seed)
	require.EqualValues(t, 11, *ep.Seed)
	require.Equal(t, [2]string{"Ken", "Ken"}, ep.Characters)
	require.Equal(t, 3, ep.Steps)
	require.NotNil(t, ep.EndedAt)
	require.False(t, ep.Terminated)
}
