package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boristopalov/colosseum/pkg/config"
)

type runFlags struct {
	configPath    string
	render        bool
	save          bool
	splash        bool
	seed          int64
	characters    []string
	outfits       []int
	frameShape    []int
	p1Name        string
	p1Model       string
	p2Name        string
	p2Model       string
	recordingRoot string
	logLevel      string
	jsonLogs      bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML match configuration")
	fs.BoolVar(&f.render, "render", false, "draw the fight to stdout")
	fs.BoolVar(&f.save, "save", false, "record the episode")
	fs.BoolVar(&f.splash, "splash", false, "show the splash screen")
	fs.Int64Var(&f.seed, "seed", 42, "random seed")
	fs.StringSliceVar(&f.characters, "characters", nil, "two characters, e.g. Ken,Ryu")
	fs.IntSliceVar(&f.outfits, "outfits", nil, "two outfit indices, e.g. 1,3")
	fs.IntSliceVar(&f.frameShape, "frame-shape", nil, "frame height,width,channels (0 keeps native)")
	fs.StringVar(&f.p1Name, "p1-name", "", "nickname of player 1")
	fs.StringVar(&f.p1Model, "p1-model", "", "model tag of player 1: scripted, openai:<model> or gemini:<model>")
	fs.StringVar(&f.p2Name, "p2-name", "", "nickname of player 2")
	fs.StringVar(&f.p2Model, "p2-model", "", "model tag of player 2")
	fs.StringVar(&f.recordingRoot, "recording-root", "", "directory recordings are written under")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fs.BoolVar(&f.jsonLogs, "json-logs", false, "log as JSON")
}

// config loads the configuration file, if any, and applies the flags that were set
func (f *runFlags) config(cmd *cobra.Command) (*config.MatchConfig, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	changed := cmd.Flags().Changed
	if changed("render") {
		cfg.Render = f.render
	}
	if changed("save") {
		cfg.SaveGame = f.save
	}
	if changed("splash") {
		cfg.SplashScreen = f.splash
	}
	if changed("seed") {
		cfg.Seed = f.seed
	}
	if changed("characters") {
		if len(f.characters) != 2 {
			return nil, fmt.Errorf("--characters needs 2 values, got %d", len(f.characters))
		}
		cfg.Characters = [2]string{f.characters[0], f.characters[1]}
	}
	if changed("outfits") {
		if len(f.outfits) != 2 {
			return nil, fmt.Errorf("--outfits needs 2 values, got %d", len(f.outfits))
		}
		cfg.Outfits = [2]int{f.outfits[0], f.outfits[1]}
	}
	if changed("frame-shape") {
		if len(f.frameShape) != 3 {
			return nil, fmt.Errorf("--frame-shape needs 3 values, got %d", len(f.frameShape))
		}
		cfg.FrameShape = [3]int{f.frameShape[0], f.frameShape[1], f.frameShape[2]}
	}
	if changed("p1-name") {
		cfg.Players[0].Nickname = f.p1Name
	}
	if changed("p1-model") {
		cfg.Players[0].Model = f.p1Model
	}
	if changed("p2-name") {
		cfg.Players[1].Nickname = f.p2Name
	}
	if changed("p2-model") {
		cfg.Players[1].Model = f.p2Model
	}
	if changed("recording-root") {
		cfg.RecordingRoot = f.recordingRoot
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if changed("json-logs") {
		cfg.Logging.JSON = f.jsonLogs
	}
	return &cfg, nil
}
