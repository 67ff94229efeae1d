package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/boristopalov/colosseum/pkg/arena"
)

const (
	GameID            = arena.GameSFIII3N
	RecordingUsername = "llm-colosseum"
	recordingDir      = "diambra/episode_recording"
	timestampLayout   = "20060102150405"
)

// MatchConfig holds the static parameters of a match
type MatchConfig struct {
	Render       bool      `yaml:"render"`
	SplashScreen bool      `yaml:"splash_screen"`
	SaveGame     bool      `yaml:"save_game"`
	Characters   [2]string `yaml:"characters"`
	Outfits      [2]int    `yaml:"outfits"`
	FrameShape   [3]int    `yaml:"frame_shape"`
	Seed         int64     `yaml:"seed"`

	// RecordingRoot is the directory recordings are written under, the
	// working directory when empty
	RecordingRoot string          `yaml:"recording_root"`
	Players       [2]PlayerConfig `yaml:"players"`
	Logging       LogConfig       `yaml:"logging"`
}

type PlayerConfig struct {
	Nickname string `yaml:"nickname"`
	Model    string `yaml:"model"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns a fresh configuration with the standard Ken vs Ken setup
func Default() MatchConfig {
	return MatchConfig{
		Characters: [2]string{"Ken", "Ken"},
		Outfits:    [2]int{1, 3},
		FrameShape: [3]int{0, 0, 0},
		Seed:       42,
		Players: [2]PlayerConfig{
			{Nickname: "Player 1", Model: "scripted"},
			{Nickname: "Player 2", Model: "scripted"},
		},
		Logging: LogConfig{Level: "info"},
	}
}

// LoadConfig reads a YAML file on top of Default
func LoadConfig(path string) (*MatchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Settings translates the configuration into environment settings. Values
// are passed through unchecked; the environment rejects illegal ones.
func (c MatchConfig) Settings() arena.EnvironmentSettingsMultiAgent {
	return arena.EnvironmentSettingsMultiAgent{
		RenderMode:   arena.RenderRGBArray,
		SplashScreen: c.SplashScreen,
		ActionSpace:  [2]arena.SpaceType{arena.Discrete, arena.Discrete},
		Characters:   c.Characters,
		Outfits:      c.Outfits,
		FrameShape:   c.FrameShape,
	}
}

// RenderMode is the mode the environment is made with
func (c MatchConfig) RenderMode() arena.RenderMode {
	if c.Render {
		return arena.RenderHuman
	}
	return arena.RenderRGBArray
}

// RecordingSettings returns nil unless the game is saved. Paths only have
// second resolution, so two recordings started in the same second collide.
func (c MatchConfig) RecordingSettings(now time.Time) (*arena.RecordingSettings, error) {
	if !c.SaveGame {
		return nil, nil
	}
	root := c.RecordingRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("recording root: %w", err)
		}
		root = wd
	}
	return &arena.RecordingSettings{
		DatasetPath: filepath.Join(root, recordingDir, GameID, "-", now.Format(timestampLayout)),
		Username:    RecordingUsername,
	}, nil
}
