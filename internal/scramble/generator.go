package scramble

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"cubedeck/internal/logx"
)

var scrambleLogger = logx.GetScope("scramble")

// Generator produces scramble sequences for an event code.
type Generator interface {
	Generate(ctx context.Context, eventCode string) (string, error)
}

// RandomMoveGenerator builds scrambles from uniformly random moves, with
// axis-repeat suppression on cubic puzzles. Random-move scrambles are not
// random-state, which is fine for practice timing.
type RandomMoveGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a generator seeded from the given source seed.
func NewGenerator(seed int64) *RandomMoveGenerator {
	return &RandomMoveGenerator{rng: rand.New(rand.NewSource(seed))}
}

type cubeSpec struct {
	length int
	faces  []string
	wide   []string // additional wide-layer faces, may be empty
}

// axisOf maps faces to their rotation axis so consecutive moves on the same
// axis can be rejected.
var axisOf = map[string]int{
	"U": 0, "D": 0, "F": 1, "B": 1, "R": 2, "L": 2,
}

var cubeSpecs = map[string]cubeSpec{
	"222":   {length: 9, faces: []string{"U", "F", "R"}},
	"333":   {length: 20, faces: []string{"U", "D", "F", "B", "R", "L"}},
	"333bf": {length: 20, faces: []string{"U", "D", "F", "B", "R", "L"}},
	"333oh": {length: 20, faces: []string{"U", "D", "F", "B", "R", "L"}},
	"444": {length: 40, faces: []string{"U", "D", "F", "B", "R", "L"},
		wide: []string{"Uw", "Fw", "Rw"}},
	"555": {length: 60, faces: []string{"U", "D", "F", "B", "R", "L"},
		wide: []string{"Uw", "Dw", "Fw", "Bw", "Rw", "Lw"}},
	"666": {length: 80, faces: []string{"U", "D", "F", "B", "R", "L"},
		wide: []string{"Uw", "Dw", "Fw", "Bw", "Rw", "Lw", "3Uw", "3Fw", "3Rw"}},
	"777": {length: 100, faces: []string{"U", "D", "F", "B", "R", "L"},
		wide: []string{"Uw", "Dw", "Fw", "Bw", "Rw", "Lw", "3Uw", "3Dw", "3Fw", "3Bw", "3Rw", "3Lw"}},
}

var cubeSuffixes = []string{"", "'", "2"}

// Generate returns one scramble for the event code. Unknown codes fall back
// to the 3x3x3 move set with a warning rather than failing the caller.
func (g *RandomMoveGenerator) Generate(ctx context.Context, eventCode string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	switch eventCode {
	case "clock":
		return g.clock(), nil
	case "minx":
		return g.megaminx(), nil
	case "pyram":
		return g.pyraminx(), nil
	case "skewb":
		return g.skewb(), nil
	case "sq1":
		return g.squareOne(), nil
	}

	spec, ok := cubeSpecs[eventCode]
	if !ok {
		scrambleLogger.Sugar().Warnf("unknown event code %q, using 333 moves", eventCode)
		spec = cubeSpecs["333"]
	}
	return g.cube(spec), nil
}

func (g *RandomMoveGenerator) cube(spec cubeSpec) string {
	moves := append(append([]string{}, spec.faces...), spec.wide...)
	out := make([]string, 0, spec.length)
	lastAxis := -1
	for len(out) < spec.length {
		m := moves[g.rng.Intn(len(moves))]
		axis := axisOf[strings.TrimLeft(m, "3w")[0:1]]
		if axis == lastAxis && len(spec.faces) <= 3 {
			// Small move sets degenerate fast if same-axis runs are allowed.
			continue
		}
		if len(out) > 0 && sameBase(out[len(out)-1], m) {
			continue
		}
		lastAxis = axis
		out = append(out, m+cubeSuffixes[g.rng.Intn(len(cubeSuffixes))])
	}
	return strings.Join(out, " ")
}

func sameBase(prev, next string) bool {
	return strings.TrimRight(prev, "'2") == next
}

func (g *RandomMoveGenerator) megaminx() string {
	// WCA notation: seven lines of R++/R-- D++/D-- pairs ending in U or U'.
	var lines []string
	for i := 0; i < 7; i++ {
		var parts []string
		for j := 0; j < 5; j++ {
			parts = append(parts,
				"R"+plusMinus(g.rng), "D"+plusMinus(g.rng))
		}
		u := "U"
		if g.rng.Intn(2) == 1 {
			u = "U'"
		}
		parts = append(parts, u)
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n")
}

func plusMinus(rng *rand.Rand) string {
	if rng.Intn(2) == 0 {
		return "++"
	}
	return "--"
}

func (g *RandomMoveGenerator) pyraminx() string {
	faces := []string{"U", "L", "R", "B"}
	out := make([]string, 0, 12)
	last := ""
	for len(out) < 9 {
		f := faces[g.rng.Intn(len(faces))]
		if f == last {
			continue
		}
		last = f
		out = append(out, f+maybePrime(g.rng))
	}
	// Tip moves close the scramble.
	for _, tip := range []string{"u", "l", "r", "b"} {
		switch g.rng.Intn(3) {
		case 0:
			out = append(out, tip)
		case 1:
			out = append(out, tip+"'")
		}
	}
	return strings.Join(out, " ")
}

func (g *RandomMoveGenerator) skewb() string {
	faces := []string{"U", "L", "R", "B"}
	out := make([]string, 0, 9)
	last := ""
	for len(out) < 9 {
		f := faces[g.rng.Intn(len(faces))]
		if f == last {
			continue
		}
		last = f
		out = append(out, f+maybePrime(g.rng))
	}
	return strings.Join(out, " ")
}

func maybePrime(rng *rand.Rand) string {
	if rng.Intn(2) == 1 {
		return "'"
	}
	return ""
}

func (g *RandomMoveGenerator) squareOne() string {
	out := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		top := g.rng.Intn(13) - 6
		bottom := g.rng.Intn(13) - 6
		if top == 0 && bottom == 0 {
			i--
			continue
		}
		out = append(out, fmt.Sprintf("(%d,%d)", top, bottom))
	}
	return strings.Join(out, " / ")
}

func (g *RandomMoveGenerator) clock() string {
	pins := []string{"UR", "DR", "DL", "UL", "U", "R", "D", "L", "ALL"}
	var parts []string
	emit := func() {
		for _, p := range pins {
			turns := g.rng.Intn(12) - 5 // -5..6
			if turns >= 0 {
				parts = append(parts, fmt.Sprintf("%s%d+", p, turns))
			} else {
				parts = append(parts, fmt.Sprintf("%s%d-", p, -turns))
			}
		}
	}
	emit()
	parts = append(parts, "y2")
	emit()
	return strings.Join(parts, " ")
}
