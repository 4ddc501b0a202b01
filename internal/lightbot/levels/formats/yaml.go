// Package formats provides level and program document parsers.
// JSON documents are read with the YAML decoder, so both share one code path.
package formats

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/vovakirdan/lightbot-arena/internal/lightbot/core"
	"gopkg.in/yaml.v3"
)

// Issue records a malformed entry that was dropped while parsing.
type Issue struct {
	Field   string
	Key     string
	Message string
}

func (i Issue) String() string {
	if i.Key == "" {
		return fmt.Sprintf("%s: %s", i.Field, i.Message)
	}
	return fmt.Sprintf("%s[%s]: %s", i.Field, i.Key, i.Message)
}

// YAMLLevel represents the document structure for a level file.
type YAMLLevel struct {
	ID            string                  `yaml:"id"`
	Name          string                  `yaml:"name"`
	Description   string                  `yaml:"description,omitempty"`
	GridSize      int                     `yaml:"gridSize"`
	Heights       [][]int                 `yaml:"heights"`
	Start         YAMLStart               `yaml:"start"`
	Goals         []YAMLCoord             `yaml:"goals"`
	IceTiles      []YAMLCoord             `yaml:"iceTiles,omitempty"`
	TeleportLinks map[string]YAMLTeleport `yaml:"teleportLinks,omitempty"`
	ElevatorMeta  map[string]YAMLElevator `yaml:"elevatorMeta,omitempty"`
	Solution      YAMLPrograms            `yaml:"solution,omitempty"`
}

// YAMLStart is the robot start pose. Dir uses 0=N, 1=E, 2=S, 3=W.
type YAMLStart struct {
	X   int `yaml:"x"`
	Y   int `yaml:"y"`
	Dir int `yaml:"dir"`
}

// YAMLCoord is a tile coordinate in list form.
type YAMLCoord struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// YAMLTeleport is a teleport destination, written either as "x,y" or as {to: "x,y"}.
type YAMLTeleport struct {
	To        string
	malformed string
}

// UnmarshalYAML accepts both the string and the object form.
func (t *YAMLTeleport) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		t.To = node.Value
	case yaml.MappingNode:
		var obj struct {
			To string `yaml:"to"`
		}
		if err := node.Decode(&obj); err != nil {
			t.malformed = "destination is not a string"
			return nil
		}
		t.To = obj.To
	default:
		t.malformed = "expected \"x,y\" or {to: \"x,y\"}"
	}
	return nil
}

// YAMLElevator is elevator metadata in any of its three forms.
type YAMLElevator struct {
	Dir       string
	DX        *int
	DY        *int
	Type      string
	malformed string
}

// UnmarshalYAML decodes elevator metadata without failing the whole document
// on a non-integral vector.
func (e *YAMLElevator) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		e.malformed = "expected an object"
		return nil
	}
	var raw struct {
		Dir  string     `yaml:"dir"`
		Type string     `yaml:"type"`
		DX   *yaml.Node `yaml:"dx"`
		DY   *yaml.Node `yaml:"dy"`
	}
	if err := node.Decode(&raw); err != nil {
		e.malformed = err.Error()
		return nil
	}
	// Names are matched verbatim: "Left" or "ROW" yields no vector.
	e.Dir = raw.Dir
	e.Type = raw.Type
	e.DX = intNode(raw.DX, &e.malformed)
	e.DY = intNode(raw.DY, &e.malformed)
	return nil
}

func intNode(n *yaml.Node, malformed *string) *int {
	if n == nil || n.ShortTag() == "!!null" {
		return nil
	}
	var f float64
	if err := n.Decode(&f); err != nil || f != math.Trunc(f) {
		*malformed = fmt.Sprintf("vector component %q is not an integer", n.Value)
		return nil
	}
	v := int(f)
	return &v
}

// YAMLPrograms maps program keys to slot lists. Null elements are empty slots.
type YAMLPrograms map[string][]*string

// Level represents a parsed level ready for validation and use.
type Level struct {
	ID          string
	Name        string
	Description string
	Size        int
	Heights     [][]int
	Start       YAMLStart
	Goals       []core.Coord
	Ice         []core.Coord
	Teleports   map[core.Coord]core.Coord
	Elevators   map[core.Coord]core.Elevator
	Solution    *core.Programs
	Issues      []Issue
}

// Spec converts the level into the engine's descriptor.
func (l *Level) Spec() core.LevelSpec {
	return core.LevelSpec{
		Size:      l.Size,
		Heights:   l.Heights,
		Start:     core.Pose{Pos: core.C(l.Start.X, l.Start.Y), Facing: core.Dir(l.Start.Dir)},
		Goals:     l.Goals,
		Ice:       l.Ice,
		Teleports: l.Teleports,
		Elevators: l.Elevators,
	}
}

// ToWorld builds the engine world for this level.
func (l *Level) ToWorld() *core.World {
	return core.NewWorld(l.Spec())
}

// ParseYAML parses a level document (YAML or JSON).
func ParseYAML(data []byte) (Level, error) {
	var yl YAMLLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return Level{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return yl.toLevel()
}

func (yl YAMLLevel) toLevel() (Level, error) {
	size := yl.GridSize
	if size == 0 {
		// Older documents omit gridSize; the matrix is square by convention.
		size = len(yl.Heights)
	}

	level := Level{
		ID:          yl.ID,
		Name:        yl.Name,
		Description: yl.Description,
		Size:        size,
		Heights:     yl.Heights,
		Start:       yl.Start,
		Goals:       toCoords(yl.Goals),
		Ice:         toCoords(yl.IceTiles),
		Teleports:   make(map[core.Coord]core.Coord, len(yl.TeleportLinks)),
		Elevators:   make(map[core.Coord]core.Elevator, len(yl.ElevatorMeta)),
	}

	for _, key := range sortedKeys(yl.TeleportLinks) {
		link := yl.TeleportLinks[key]
		from, ok := parseSourceKey(key)
		if !ok {
			level.addIssue("teleportLinks", key, "source is not \"x,y\"")
			continue
		}
		if link.malformed != "" {
			level.addIssue("teleportLinks", key, link.malformed)
			continue
		}
		to, ok := ParseCoordKey(link.To)
		if !ok {
			level.addIssue("teleportLinks", key, fmt.Sprintf("destination %q is not \"x,y\"", link.To))
			continue
		}
		level.Teleports[from] = to
	}

	for _, key := range sortedKeys(yl.ElevatorMeta) {
		meta := yl.ElevatorMeta[key]
		at, ok := parseSourceKey(key)
		if !ok {
			level.addIssue("elevatorMeta", key, "source is not \"x,y\"")
			continue
		}
		if meta.malformed != "" {
			level.addIssue("elevatorMeta", key, meta.malformed)
			continue
		}
		e := core.Elevator{Dir: meta.Dir, DX: meta.DX, DY: meta.DY, Type: meta.Type}
		if _, ok := e.Vector(); !ok {
			level.addIssue("elevatorMeta", key, "no usable direction")
			continue
		}
		level.Elevators[at] = e
	}

	if len(yl.Solution) > 0 {
		p, issues, err := yl.Solution.toPrograms()
		if err != nil {
			return Level{}, fmt.Errorf("solution: %w", err)
		}
		level.Issues = append(level.Issues, issues...)
		level.Solution = &p
	}

	return level, nil
}

func (l *Level) addIssue(field, key, msg string) {
	l.Issues = append(l.Issues, Issue{Field: field, Key: key, Message: msg})
}

// ParsePrograms parses a program document: {main: [...], m1: [...], m2: [...]}.
func ParsePrograms(data []byte) (core.Programs, []Issue, error) {
	var yp YAMLPrograms
	if err := yaml.Unmarshal(data, &yp); err != nil {
		return core.Programs{}, nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return yp.toPrograms()
}

func (yp YAMLPrograms) toPrograms() (core.Programs, []Issue, error) {
	var (
		p      core.Programs
		issues []Issue
		seen   = make(map[core.ProgramID]string)
	)

	for _, key := range sortedKeys(yp) {
		id, ok := core.ParseProgramID(key)
		if !ok {
			issues = append(issues, Issue{Field: "programs", Key: key, Message: "unknown program"})
			continue
		}
		if prev, dup := seen[id]; dup {
			issues = append(issues, Issue{Field: "programs", Key: key, Message: fmt.Sprintf("duplicates %q", prev)})
			continue
		}
		seen[id] = key

		slots := yp[key]
		ops := make([]core.Opcode, len(slots))
		for i, tok := range slots {
			if tok == nil {
				continue
			}
			op, ok := core.ParseOpcode(*tok)
			if !ok {
				return core.Programs{}, nil, fmt.Errorf("%s[%d]: unknown opcode %q", key, i, *tok)
			}
			ops[i] = op
		}
		p.Set(id, ops)
	}

	return p, issues, nil
}

// Submission is a level plus the programs to run against it.
type Submission struct {
	Level    Level
	Programs core.Programs
	Issues   []Issue
}

// ParseSubmission parses a {level: {...}, programs: {...}} document.
func ParseSubmission(data []byte) (Submission, error) {
	var doc struct {
		Level    *YAMLLevel   `yaml:"level"`
		Programs YAMLPrograms `yaml:"programs"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Submission{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if doc.Level == nil {
		return Submission{}, errors.New("missing level")
	}

	level, err := doc.Level.toLevel()
	if err != nil {
		return Submission{}, fmt.Errorf("level: %w", err)
	}
	progs, issues, err := doc.Programs.toPrograms()
	if err != nil {
		return Submission{}, fmt.Errorf("programs: %w", err)
	}

	sub := Submission{Level: level, Programs: progs}
	sub.Issues = append(sub.Issues, level.Issues...)
	sub.Issues = append(sub.Issues, issues...)
	return sub, nil
}

// ParseCoordKey parses an "x,y" coordinate key.
func ParseCoordKey(s string) (core.Coord, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return core.Coord{}, false
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return core.Coord{}, false
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return core.Coord{}, false
	}
	return core.C(x, y), true
}

// parseSourceKey accepts only the canonical "x,y" form.
// " 1,1", "01,1" and "+1,1" are rejected.
func parseSourceKey(s string) (core.Coord, bool) {
	c, ok := ParseCoordKey(s)
	if !ok || strconv.Itoa(c.X)+","+strconv.Itoa(c.Y) != s {
		return core.Coord{}, false
	}
	return c, true
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml", ".json"}
}

func toCoords(in []YAMLCoord) []core.Coord {
	if len(in) == 0 {
		return nil
	}
	out := make([]core.Coord, len(in))
	for i, c := range in {
		out[i] = core.C(c.X, c.Y)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
