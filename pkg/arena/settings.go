package arena

// SpaceType selects how an agent's actions are encoded
type SpaceType int

const (
	// Discrete encodes a move or an attack as a single integer
	Discrete SpaceType = iota
	// MultiDiscrete encodes a (move, attack) pair
	MultiDiscrete
)

func (s SpaceType) String() string {
	switch s {
	case Discrete:
		return "discrete"
	case MultiDiscrete:
		return "multi_discrete"
	default:
		return "unknown"
	}
}

// RenderMode selects where rendered frames go
type RenderMode string

const (
	RenderRGBArray RenderMode = "rgb_array" // frames are returned as pixel buffers
	RenderHuman    RenderMode = "human"     // frames are drawn to the output writer
)

// EnvironmentSettingsMultiAgent holds the settings of a two-player environment
type EnvironmentSettingsMultiAgent struct {
	RenderMode   RenderMode
	SplashScreen bool
	ActionSpace  [2]SpaceType
	Characters   [2]string
	Outfits      [2]int
	// FrameShape is {height, width, channels}; zero entries keep the native value
	FrameShape [3]int
	// StepRatio is the number of emulated frames per step, 6 when zero
	StepRatio int
}

// RecordingSettings describes where episodes are recorded
type RecordingSettings struct {
	DatasetPath string
	Username    string
}

// ResetOptions overrides episode settings on reset. A nil field keeps the
// current value; an empty character name lets the environment choose one.
type ResetOptions struct {
	Characters  *[2]string
	CharOutfits *[2]int
}
