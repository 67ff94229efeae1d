package environment

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/boristopalov/colosseum/pkg/arena"
	"github.com/boristopalov/colosseum/pkg/config"
)

// Session is an opened environment together with what produced it
type Session struct {
	ID          string
	Env         arena.Env
	Config      config.MatchConfig
	Settings    arena.EnvironmentSettingsMultiAgent
	Recording   *arena.RecordingSettings
	Observation arena.Observation
	Info        arena.Info
}

type SessionParams struct {
	Maker  arena.Maker
	Output io.Writer
	Logger *zap.Logger
	Now    func() time.Time
}

type SessionOption func(*SessionParams)

// WithMaker replaces the environment maker, arena.Make by default
func WithMaker(m arena.Maker) SessionOption {
	return func(p *SessionParams) {
		p.Maker = m
	}
}

func WithOutput(w io.Writer) SessionOption {
	return func(p *SessionParams) {
		p.Output = w
	}
}

func WithLogger(l *zap.Logger) SessionOption {
	return func(p *SessionParams) {
		p.Logger = l
	}
}

// WithClock sets the clock used to stamp recording paths
func WithClock(now func() time.Time) SessionOption {
	return func(p *SessionParams) {
		p.Now = now
	}
}

func defaultSessionParams() *SessionParams {
	return &SessionParams{
		Maker:  arena.Make,
		Output: os.Stdout,
		Logger: zap.NewNop(),
		Now:    time.Now,
	}
}

// NewSession makes the environment for cfg and resets it with the configured seed
func NewSession(cfg config.MatchConfig, opts ...SessionOption) (*Session, error) {
	params := defaultSessionParams()
	for _, opt := range opts {
		opt(params)
	}

	settings := cfg.Settings()
	recording, err := cfg.RecordingSettings(params.Now())
	if err != nil {
		return nil, err
	}

	makeOpts := []arena.MakeOption{
		arena.WithRenderMode(cfg.RenderMode()),
		arena.WithOutput(params.Output),
		arena.WithLogger(params.Logger),
	}
	if recording != nil {
		makeOpts = append(makeOpts, arena.WithEpisodeRecording(recording))
	}

	env, err := params.Maker(config.GameID, settings, makeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to make %s environment: %w", config.GameID, err)
	}

	seed := cfg.Seed
	obs, info, err := env.Reset(&seed, nil)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to reset %s environment: %w", config.GameID, err)
	}

	s := &Session{
		ID:          uuid.New().String(),
		Env:         env,
		Config:      cfg,
		Settings:    settings,
		Recording:   recording,
		Observation: obs,
		Info:        info,
	}
	fields := []zap.Field{
		zap.String("session", s.ID),
		zap.String("render_mode", string(cfg.RenderMode())),
		zap.Int64("seed", seed),
	}
	if recording != nil {
		fields = append(fields, zap.String("dataset_path", recording.DatasetPath))
	}
	params.Logger.Info("session opened", fields...)
	return s, nil
}

// Close closes the underlying environment
func (s *Session) Close() error {
	return s.Env.Close()
}
