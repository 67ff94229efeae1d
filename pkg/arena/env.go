package arena

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

var (
	ErrUnknownGame            = errors.New("unknown game")
	ErrUnknownCharacter       = errors.New("unknown character")
	ErrInvalidOutfit          = errors.New("invalid outfit")
	ErrInvalidFrameShape      = errors.New("invalid frame shape")
	ErrUnsupportedActionSpace = errors.New("unsupported action space")
	ErrInvalidActions         = errors.New("invalid actions")
	ErrEpisodeDone            = errors.New("episode is done, reset required")
	ErrClosed                 = errors.New("environment closed")
)

// Env is a running game environment
type Env interface {
	// Reset starts a new episode. A nil seed keeps the current random stream.
	Reset(seed *int64, options *ResetOptions) (Observation, Info, error)
	// Step advances the game by one decision for both agents
	Step(actions Actions) (StepResult, error)
	// Render draws the current frame according to the render mode.
	// In rgb_array mode the frame is returned; in human mode it is written out.
	Render() (*Frame, error)
	// Close releases the environment and its recorder
	Close() error
}

// Maker builds an environment for a game id
type Maker func(gameID string, settings EnvironmentSettingsMultiAgent, opts ...MakeOption) (Env, error)

type MakeParams struct {
	RenderMode RenderMode
	Recording  *RecordingSettings
	Output     io.Writer
	Logger     *zap.Logger
}

type MakeOption func(*MakeParams)

// WithRenderMode overrides the render mode carried by the settings
func WithRenderMode(mode RenderMode) MakeOption {
	return func(p *MakeParams) {
		p.RenderMode = mode
	}
}

// WithEpisodeRecording attaches a recorder to the environment
func WithEpisodeRecording(rs *RecordingSettings) MakeOption {
	return func(p *MakeParams) {
		p.Recording = rs
	}
}

func WithOutput(w io.Writer) MakeOption {
	return func(p *MakeParams) {
		p.Output = w
	}
}

func WithLogger(l *zap.Logger) MakeOption {
	return func(p *MakeParams) {
		p.Logger = l
	}
}

func defaultMakeParams(settings EnvironmentSettingsMultiAgent) *MakeParams {
	mode := settings.RenderMode
	if mode == "" {
		mode = RenderRGBArray
	}
	return &MakeParams{
		RenderMode: mode,
		Output:     os.Stdout,
		Logger:     zap.NewNop(),
	}
}

// Make builds the environment for gameID
func Make(gameID string, settings EnvironmentSettingsMultiAgent, opts ...MakeOption) (Env, error) {
	params := defaultMakeParams(settings)
	for _, opt := range opts {
		opt(params)
	}

	switch gameID {
	case GameSFIII3N:
		return newSFIII3N(settings, params)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, gameID)
	}
}
