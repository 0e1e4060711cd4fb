package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GoalType selects the predicate a level's door checks.
type GoalType string

const (
	GoalStars          GoalType = "stars"
	GoalMonsters       GoalType = "monsters"
	GoalMonstersAndKey GoalType = "monsters_and_key"
)

// FillerConfig describes the randomly placed actors dropped onto free tiles.
type FillerConfig struct {
	Kind  Kind `json:"kind" yaml:"kind"`
	Count int  `json:"count" yaml:"count"`
}

// LevelMessages holds the text shown for one level.
type LevelMessages struct {
	Objective string `json:"objective" yaml:"objective"`
	Rejected  string `json:"rejected" yaml:"rejected"`
}

// LevelConfig represents one level of a pack
type LevelConfig struct {
	Name         string          `json:"name" yaml:"name"`
	Layout       []string        `json:"layout,omitempty" yaml:"layout,omitempty"`
	MapFile      string          `json:"map_file,omitempty" yaml:"map_file,omitempty"`
	Legend       map[string]Kind `json:"legend" yaml:"legend"`
	Goal         GoalType        `json:"goal" yaml:"goal"`
	GoalStars    int             `json:"goal_stars,omitempty" yaml:"goal_stars,omitempty"`
	Filler       FillerConfig    `json:"filler" yaml:"filler"`
	Movement     MovementMode    `json:"movement" yaml:"movement"`
	GhostStep    int             `json:"ghost_step,omitempty" yaml:"ghost_step,omitempty"`
	MonsterDelay int             `json:"monster_delay,omitempty" yaml:"monster_delay,omitempty"`
	Messages     LevelMessages   `json:"messages" yaml:"messages"`
}

// GameMessages holds the pack-wide terminal messages.
type GameMessages struct {
	Won  string `json:"won" yaml:"won"`
	Lost string `json:"lost" yaml:"lost"`
}

// GameConfig represents a level pack
type GameConfig struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Levels      []LevelConfig `json:"levels" yaml:"levels"`
	Messages    GameMessages  `json:"messages" yaml:"messages"`
}

// ValidateGameConfig validates a level pack for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}
	if len(config.Levels) == 0 {
		return fmt.Errorf("config validation: at least one level is required")
	}
	if config.Messages.Won == "" {
		return fmt.Errorf("config validation: messages.won is required")
	}
	if config.Messages.Lost == "" {
		return fmt.Errorf("config validation: messages.lost is required")
	}

	for i := range config.Levels {
		if err := ValidateLevelConfig(&config.Levels[i]); err != nil {
			return fmt.Errorf("config validation: level %d: %w", i, err)
		}
	}
	return nil
}

// ValidateLevelConfig checks a single level. Levels that reference a map file
// are checked for layout only once the file is resolved.
func ValidateLevelConfig(level *LevelConfig) error {
	if level.Name == "" {
		return fmt.Errorf("name is required")
	}
	switch level.Goal {
	case GoalStars:
		if level.GoalStars <= 0 {
			return fmt.Errorf("goal_stars must be positive for a stars goal, got %d", level.GoalStars)
		}
		if level.Filler.Kind == KindStar && level.Filler.Count < level.GoalStars {
			return fmt.Errorf("filler places %d stars but goal_stars is %d", level.Filler.Count, level.GoalStars)
		}
	case GoalMonsters, GoalMonstersAndKey:
	default:
		return fmt.Errorf("unknown goal %q", level.Goal)
	}
	switch level.Movement {
	case MoveSmooth, MovePrecise, "":
	default:
		return fmt.Errorf("unknown movement mode %q", level.Movement)
	}
	if level.Filler.Count < 0 {
		return fmt.Errorf("filler count must not be negative, got %d", level.Filler.Count)
	}
	if level.Filler.Count > 0 && !level.Filler.Kind.Valid() {
		return fmt.Errorf("filler kind %q: %w", level.Filler.Kind, ErrUnknownKind)
	}
	if level.Filler.Kind == KindPlayer || level.Filler.Kind.IsMonster() {
		return fmt.Errorf("filler kind %q cannot be placed randomly", level.Filler.Kind)
	}
	if level.GhostStep < 0 || level.GhostStep > SubTiles {
		return fmt.Errorf("ghost_step must be between 0 and %d, got %d", SubTiles, level.GhostStep)
	}
	if level.MonsterDelay < 0 {
		return fmt.Errorf("monster_delay must not be negative, got %d", level.MonsterDelay)
	}
	if level.Messages.Objective == "" {
		return fmt.Errorf("messages.objective is required")
	}
	if level.Messages.Rejected == "" {
		return fmt.Errorf("messages.rejected is required")
	}
	if strings.Contains(level.Messages.Objective, "%d") && level.Goal != GoalStars {
		return fmt.Errorf("messages.objective may only contain %%d for a stars goal")
	}

	hasPlayer := false
	for token, kind := range level.Legend {
		if len(strings.Fields(token)) != 1 || token != strings.TrimSpace(token) {
			return fmt.Errorf("legend token %q must be a single non-blank token", token)
		}
		if !kind.Valid() {
			return fmt.Errorf("legend[%q] = %q: %w", token, kind, ErrUnknownKind)
		}
		if kind == KindPlayer {
			hasPlayer = true
		}
	}
	if !hasPlayer {
		return fmt.Errorf("legend must map a token to %q", KindPlayer)
	}

	if len(level.Layout) == 0 {
		if level.MapFile == "" {
			return fmt.Errorf("layout or map_file is required")
		}
		return nil
	}
	tiles, err := ParseLayout(level.Layout)
	if err != nil {
		return err
	}
	return validateTiles(tiles, level)
}

// validateTiles checks stage dimensions, player presence and filler room.
func validateTiles(tiles [][]string, level *LevelConfig) error {
	height := len(tiles)
	width := len(tiles[0])
	if width < MinStageSize || width > MaxStageSize || height < MinStageSize || height > MaxStageSize {
		return fmt.Errorf("stage must be between %d and %d tiles per side, got %dx%d",
			MinStageSize, MaxStageSize, width, height)
	}

	players, occupied := 0, 0
	for _, row := range tiles {
		for _, token := range row {
			kind, ok := level.Legend[token]
			if !ok {
				continue
			}
			occupied++
			if kind == KindPlayer {
				players++
			}
		}
	}
	if players == 0 {
		return ErrNoPlayer
	}
	if players > 1 {
		return fmt.Errorf("layout has %d players, want exactly one", players)
	}
	if free := width*height - occupied; level.Filler.Count > free {
		return fmt.Errorf("%w: filler wants %d tiles but only %d are free", ErrNoFreeTile, level.Filler.Count, free)
	}
	return nil
}

// ResolveMapFiles reads every level's map_file relative to baseDir into its
// layout and re-validates the level.
func ResolveMapFiles(config *GameConfig, baseDir string) error {
	for i := range config.Levels {
		level := &config.Levels[i]
		if len(level.Layout) > 0 || level.MapFile == "" {
			continue
		}
		path := level.MapFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		layout, err := LoadMapFile(path)
		if err != nil {
			return fmt.Errorf("level %d: %w", i, err)
		}
		level.Layout = layout
		if err := ValidateLevelConfig(level); err != nil {
			return fmt.Errorf("config validation: level %d: %w", i, err)
		}
	}
	return nil
}

// LoadGameConfig loads a level pack from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	if err := ResolveMapFiles(&config, filepath.Dir(filename)); err != nil {
		return nil, err
	}
	return &config, nil
}

// StandardLegend is the token set of the built-in classic levels.
func StandardLegend(monster Kind) map[string]Kind {
	return map[string]Kind{
		"P": KindPlayer,
		"X": KindWall,
		"D": KindDoor,
		"C": KindGhost,
		"M": monster,
		"N": KindSquishyVertical,
		"K": KindKey,
	}
}

// DefaultGameConfig returns the built-in three-level pack.
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "Ghost chase, squish the monsters, then squish them again and find the key",
		Messages: GameMessages{
			Won:  "Congratulations, you won!",
			Lost: "You lose! :( Better luck next time.",
		},
		Levels: []LevelConfig{
			{
				Name: "ghost chase",
				Layout: []string{
					"X X X X X X X X X X X X X X",
					"X P . . . . X . . . . . . X",
					"X . X X X . X . X X X X . X",
					"X . X . . . . . . . . X . X",
					"X . X . X X X X X X . X . X",
					"X . . . X . . . . X . . . X",
					"X X X . X . X X . X . X X X",
					"X . . . . . X . . . . . D X",
					"X . X X X . X . X X X . . X",
					"X . . . . . . . . C X . . X",
					"X X X X X X X X X X X X X X",
				},
				Legend:    StandardLegend(KindSquishy),
				Goal:      GoalStars,
				GoalStars: 5,
				Filler:    FillerConfig{Kind: KindStar, Count: 7},
				Movement:  MoveSmooth,
				GhostStep: DefaultGhostStep,
				Messages: LevelMessages{
					Objective: "Objective: Collect %d stars before the ghost gets you and head for the door",
					Rejected:  "Door won't open unless you collect enough stars",
				},
			},
			{
				Name: "squish the monsters",
				Layout: []string{
					"X X X X X X X X X X X X X X",
					"X P . . . . . . . . . . . X",
					"X . . . . . . . M . . . . X",
					"X . . X X X . . . . X . . X",
					"X . . . . . . . . . X . . X",
					"X . M . . . . X . . . . . X",
					"X . . . . . . X . . . . D X",
					"X . . . X . . . . . M . . X",
					"X . . . X . . . . . . . . X",
					"X . . . . . . . . . . . . X",
					"X X X X X X X X X X X X X X",
				},
				Legend:       StandardLegend(KindSquishy),
				Goal:         GoalMonsters,
				Filler:       FillerConfig{Kind: KindBox, Count: 12},
				Movement:     MoveSmooth,
				MonsterDelay: DefaultMonsterDelay,
				Messages: LevelMessages{
					Objective: "Objective: Squish all the monsters with the boxes  and head for the door",
					Rejected:  "Door won't open unless all the monsters are dead",
				},
			},
			{
				Name: "squish and key",
				Layout: []string{
					"X X X X X X X X X X X X X X",
					"X P . . . . . X . . . . . X",
					"X . . . . . . X . . N . . X",
					"X . . M . . . . . . . . . X",
					"X . . . . . . X . . . . . X",
					"X X X . X X X X . . . . . X",
					"X . . . . . . . . M . . . X",
					"X . N . . . . . . . . . D X",
					"X . . . . . X . . . . . . X",
					"X K . . . . X . . . . . . X",
					"X X X X X X X X X X X X X X",
				},
				Legend:       StandardLegend(KindSquishyHorizontal),
				Goal:         GoalMonstersAndKey,
				Filler:       FillerConfig{Kind: KindBox, Count: 12},
				Movement:     MoveSmooth,
				MonsterDelay: DefaultMonsterDelay,
				Messages: LevelMessages{
					Objective: "Objective: Squish all the monsters with the boxes, get the key and head for the door",
					Rejected:  "Door won't open unless all the monsters are dead and you get the key",
				},
			},
		},
	}
}
