package reinforcement

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	. "qmaze/grid_world"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Defaults reproduce the classic maze run.
const (
	DefaultEpsilon  = 0.95
	DefaultGamma    = 0.8
	DefaultEta      = 0.9
	DefaultEpisodes = 1500
	// DefaultMaxSteps bounds episodes and rollouts; 0 disables the bound.
	DefaultMaxSteps = 10000

	WallReward  = -500
	FloorReward = -10
	GoalReward  = 500
)

// OuterConfig is the config file envelope: a kind selector and its definition.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// TrainingConfig holds the maze, rewards and the standard RL params (learning rate,
// gamma, epsilon) outside of code. The yaml keys are lowercase because viper lowercases
// every key it reads before the 'def' block is re-decoded here.
type TrainingConfig struct {
	// HyperParams is a key-val pair of param names and their value: epsilon, gamma, eta.
	HyperParams []HyperParameter `yaml:"hyperparams"`
	Episodes    int              `yaml:"episodes"`
	// MaxStepsPerEpisode bounds each episode and the final rollout. Zero means unbounded,
	// in which case an agent that keeps walking into the grid edge never terminates.
	MaxStepsPerEpisode int   `yaml:"maxstepsperepisode"`
	Seed               int64 `yaml:"seed"`
	Start              struct {
		Row int `yaml:"row"`
		Col int `yaml:"col"`
	} `yaml:"start"`
	Rewards struct {
		Wall  float64 `yaml:"wall"`
		Floor float64 `yaml:"floor"`
		Goal  float64 `yaml:"goal"`
	} `yaml:"rewards"`
	Maze [][]int `yaml:"maze"`
	// TrainingDeadline is a fixed duration describing when to terminate training.
	TrainingDeadline map[string]string `yaml:"trainingdeadline"`
}

type HyperParameter struct {
	Key string  `yaml:"key"`
	Val float64 `yaml:"val"`
}

// DefaultConfig returns the full maze with the classic hyperparameters.
func DefaultConfig() *TrainingConfig {
	cfg := &TrainingConfig{
		HyperParams: []HyperParameter{
			{Key: "epsilon", Val: DefaultEpsilon},
			{Key: "gamma", Val: DefaultGamma},
			{Key: "eta", Val: DefaultEta},
		},
		Episodes:           DefaultEpisodes,
		MaxStepsPerEpisode: DefaultMaxSteps,
		Maze:               FullMaze,
	}
	cfg.Start.Row, cfg.Start.Col = FullStart.Row, FullStart.Col
	cfg.Rewards.Wall, cfg.Rewards.Floor, cfg.Rewards.Goal = WallReward, FloorReward, GoalReward
	return cfg
}

func (cfg *TrainingConfig) GetHyperParamOrDefault(param string, defaultVal float64) float64 {
	for _, kvp := range cfg.HyperParams {
		if kvp.Key == param {
			return kvp.Val
		}
	}
	return defaultVal
}

// Epsilon is the probability of taking the greedy action.
func (cfg *TrainingConfig) Epsilon() float64 {
	return cfg.GetHyperParamOrDefault("epsilon", DefaultEpsilon)
}

// Gamma is the discount factor, or how much to value future action values.
func (cfg *TrainingConfig) Gamma() float64 {
	return cfg.GetHyperParamOrDefault("gamma", DefaultGamma)
}

// Eta is the learning rate.
func (cfg *TrainingConfig) Eta() float64 {
	return cfg.GetHyperParamOrDefault("eta", DefaultEta)
}

func (cfg *TrainingConfig) StartCell() Cell {
	return Cell{Row: cfg.Start.Row, Col: cfg.Start.Col}
}

// Validate checks hyperparameter ranges and rewards. The maze itself is checked when the grid is built.
func (cfg *TrainingConfig) Validate() error {
	if eps := cfg.Epsilon(); eps < 0 || eps > 1 {
		return fmt.Errorf("%w: epsilon %v not in [0,1]", ErrInvalidConfig, eps)
	}
	if gamma := cfg.Gamma(); gamma < 0 || gamma > 1 {
		return fmt.Errorf("%w: gamma %v not in [0,1]", ErrInvalidConfig, gamma)
	}
	if eta := cfg.Eta(); eta <= 0 || eta > 1 {
		return fmt.Errorf("%w: eta %v not in (0,1]", ErrInvalidConfig, eta)
	}
	if cfg.Episodes < 1 {
		return fmt.Errorf("%w: episodes must be at least 1, got %d", ErrInvalidConfig, cfg.Episodes)
	}
	if cfg.MaxStepsPerEpisode < 0 {
		return fmt.Errorf("%w: negative maxStepsPerEpisode %d", ErrInvalidConfig, cfg.MaxStepsPerEpisode)
	}
	// Terminal cells are told apart from floor by their reward, and a goal that pays the
	// same as a wall teaches nothing.
	if cfg.Rewards.Floor == cfg.Rewards.Wall || cfg.Rewards.Floor == cfg.Rewards.Goal {
		return fmt.Errorf("%w: the floor reward must differ from the wall and goal rewards", ErrInvalidConfig)
	}
	if cfg.Rewards.Wall == cfg.Rewards.Goal {
		return fmt.Errorf("%w: the wall and goal rewards must differ", ErrInvalidConfig)
	}
	if _, ok := cfg.TrainingDeadline["duration"]; ok {
		if _, err := time.ParseDuration(cfg.TrainingDeadline["duration"]); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// WithTrainingDeadline returns a context extended by the training deadline, if one is specified.
func (cfg *TrainingConfig) WithTrainingDeadline(
	ctx context.Context,
) (context.Context, context.CancelFunc, error) {
	if val, ok := cfg.TrainingDeadline["duration"]; ok {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return nil, nil, err
		}
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}

// FromYaml reads the config envelope at @path with viper, then decodes its 'def' block over
// the defaults; fields absent from the file keep their default value. QMAZE_EPISODES,
// QMAZE_SEED and QMAZE_MAXSTEPS environment variables override the file.
func FromYaml(path string) (*TrainingConfig, error) {
	vp := newViper()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))

	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if outerConfig.Kind != "" && outerConfig.Kind != "qlearning" {
		return nil, fmt.Errorf("%w: unsupported kind %q", ErrInvalidConfig, outerConfig.Kind)
	}

	var spec []byte
	if spec, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err = yaml.Unmarshal(spec, cfg); err != nil {
		return nil, fmt.Errorf("decode config def: %w", err)
	}

	return withEnv(vp, cfg)
}

// FromEnv returns the default config with the QMAZE_* environment overrides applied.
func FromEnv() (*TrainingConfig, error) {
	return withEnv(newViper(), DefaultConfig())
}

func newViper() *viper.Viper {
	vp := viper.New()
	vp.SetEnvPrefix("qmaze")
	vp.AutomaticEnv()
	return vp
}

func withEnv(vp *viper.Viper, cfg *TrainingConfig) (*TrainingConfig, error) {
	if vp.IsSet("episodes") {
		cfg.Episodes = vp.GetInt("episodes")
	}
	if vp.IsSet("seed") {
		cfg.Seed = vp.GetInt64("seed")
	}
	if vp.IsSet("maxsteps") {
		cfg.MaxStepsPerEpisode = vp.GetInt("maxsteps")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
