package bracket

import (
	"sort"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/tablecup/internal/utils"
)

// PhaseLayout is one side of the bracket drawn as columns of rounds.
type PhaseLayout struct {
	Phase  Phase         `json:"phase"`
	Rounds []RoundLayout `json:"rounds"`
}

type RoundLayout struct {
	Round   Round   `json:"round"`
	Matches []Match `json:"matches"`
}

var phaseOrder = map[Phase]int{
	PhaseGroup:   0,
	PhaseWinners: 1,
	PhaseLosers:  2,
	PhaseFinals:  3,
}

// Layout groups matches by phase and round in drawing order. Inside a round
// matches keep their bracket slot order, grouped by group label.
func Layout(rounds []Round, matches []Match) []PhaseLayout {
	byRound := make(map[string][]Match)
	for _, m := range matches {
		key := m.RoundID.String()
		byRound[key] = append(byRound[key], m)
	}

	sorted := make([]Round, len(rounds))
	copy(sorted, rounds)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Phase != sorted[j].Phase {
			return phaseOrder[sorted[i].Phase] < phaseOrder[sorted[j].Phase]
		}
		return sorted[i].RoundNumber < sorted[j].RoundNumber
	})

	var out []PhaseLayout
	for _, r := range sorted {
		if len(out) == 0 || out[len(out)-1].Phase != r.Phase {
			out = append(out, PhaseLayout{Phase: r.Phase})
		}

		ms := byRound[r.ID.String()]
		sort.SliceStable(ms, func(i, j int) bool {
			gi, gj := utils.OrZero(ms[i].GroupID), utils.OrZero(ms[j].GroupID)
			if gi != gj {
				return gi < gj
			}
			return slot(ms[i].BracketPosition) < slot(ms[j].BracketPosition)
		})

		phase := &out[len(out)-1]
		phase.Rounds = append(phase.Rounds, RoundLayout{Round: r, Matches: ms})
	}
	return out
}

// slot reads the match index off a position such as W-R2-M3.
func slot(position string) int {
	i := strings.LastIndex(position, "-M")
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(position[i+2:])
	if err != nil {
		return 0
	}
	return n
}
