package verify

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/vovakirdan/lightbot-arena/internal/lightbot/core"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/levels/formats"
)

// fingerprintVersion changes whenever engine semantics change, so stale cache
// entries stop matching.
const fingerprintVersion = 1

type canonical struct {
	Version   int        `json:"v"`
	Budget    int        `json:"budget"`
	Size      int        `json:"size"`
	Heights   [][]int    `json:"heights"`
	Start     [3]int     `json:"start"`
	Goals     [][2]int   `json:"goals"`
	Ice       [][2]int   `json:"ice"`
	Teleports [][4]int   `json:"teleports"`
	Elevators [][4]int   `json:"elevators"`
	Programs  [][]string `json:"programs"`
}

// Fingerprint returns a stable SHA-256 hex digest of everything that affects
// a verdict: the normalized level and the programs. Document cosmetics such as
// ID, name, key order, duplicate goals or the elevator notation do not change it.
func Fingerprint(l *formats.Level, p core.Programs) string {
	w := l.ToWorld()

	c := canonical{
		Version: fingerprintVersion,
		Budget:  core.DefaultStepBudget,
		Size:    l.Size,
		Heights: l.Heights,
		Start:   [3]int{l.Start.X, l.Start.Y, l.Start.Dir},
		Goals:   pairs(w.Goals()),
		Ice:     pairs(l.Ice),
	}

	for from := range l.Teleports {
		to, ok := w.TeleportDestination(from)
		if !ok {
			continue
		}
		c.Teleports = append(c.Teleports, [4]int{from.X, from.Y, to.X, to.Y})
	}
	for at := range l.Elevators {
		v, ok := w.ElevatorVector(at)
		if !ok {
			continue
		}
		c.Elevators = append(c.Elevators, [4]int{at.X, at.Y, v.DX, v.DY})
	}
	sortQuads(c.Teleports)
	sortQuads(c.Elevators)

	for _, id := range core.ProgramIDs() {
		c.Programs = append(c.Programs, p.Tokens(id))
	}

	// Marshal cannot fail for this shape.
	data, _ := json.Marshal(c)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func pairs(cs []core.Coord) [][2]int {
	seen := make(map[core.Coord]struct{}, len(cs))
	out := make([][2]int, 0, len(cs))
	for _, c := range cs {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, [2]int{c.X, c.Y})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][1] != out[j][1] {
			return out[i][1] < out[j][1]
		}
		return out[i][0] < out[j][0]
	})
	return out
}

func sortQuads(q [][4]int) {
	sort.Slice(q, func(i, j int) bool {
		for k := 0; k < 4; k++ {
			if q[i][k] != q[j][k] {
				return q[i][k] < q[j][k]
			}
		}
		return false
	})
}
