package bracket

import (
	"sort"

	"github.com/AdamBeresnev/tablecup/internal/utils"
	"github.com/google/uuid"
)

const (
	pointsPerWin  = 2
	pointsPerLoss = 1
)

type Standing struct {
	TeamID        uuid.UUID `json:"teamId"`
	Played        int       `json:"played"`
	Wins          int       `json:"wins"`
	Losses        int       `json:"losses"`
	PointsFor     int       `json:"pointsFor"`
	PointsAgainst int       `json:"pointsAgainst"`
	PointDiff     int       `json:"pointDiff"`
	Points        int       `json:"points"`
}

type GroupStanding struct {
	Group     string     `json:"group"`
	Standings []Standing `json:"standings"`
}

// ComputeGroupStandings ranks teams by wins, then point difference, then
// points scored. Only decided non bye matches between listed teams count.
func ComputeGroupStandings(teams []Team, matches []Match) []Standing {
	rows := make([]Standing, len(teams))
	index := make(map[uuid.UUID]int, len(teams))
	for i, t := range teams {
		rows[i].TeamID = t.ID
		index[t.ID] = i
	}

	for _, m := range matches {
		if !m.Completed() || m.IsBye || !m.Full() || m.WinnerID == nil {
			continue
		}
		i, ok1 := index[*m.Team1ID]
		j, ok2 := index[*m.Team2ID]
		if !ok1 || !ok2 {
			continue
		}

		s1, s2 := utils.OrZero(m.Team1Score), utils.OrZero(m.Team2Score)
		tally(&rows[i], s1, s2, *m.WinnerID == *m.Team1ID)
		tally(&rows[j], s2, s1, *m.WinnerID == *m.Team2ID)
	}

	for i := range rows {
		rows[i].PointDiff = rows[i].PointsFor - rows[i].PointsAgainst
		rows[i].Points = pointsPerWin*rows[i].Wins + pointsPerLoss*rows[i].Losses
	}

	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].Wins != rows[b].Wins {
			return rows[a].Wins > rows[b].Wins
		}
		if rows[a].PointDiff != rows[b].PointDiff {
			return rows[a].PointDiff > rows[b].PointDiff
		}
		return rows[a].PointsFor > rows[b].PointsFor
	})
	return rows
}

func tally(row *Standing, scored, conceded int, won bool) {
	row.Played++
	row.PointsFor += scored
	row.PointsAgainst += conceded
	if won {
		row.Wins++
	} else {
		row.Losses++
	}
}

// StandingsByGroup computes standings for every group label found on the
// teams, ordered by label.
func StandingsByGroup(teams []Team, matches []Match) []GroupStanding {
	groupTeams := make(map[string][]Team)
	for _, t := range teams {
		if t.GroupID != nil {
			groupTeams[*t.GroupID] = append(groupTeams[*t.GroupID], t)
		}
	}
	groupMatches := make(map[string][]Match)
	for _, m := range matches {
		if m.GroupID != nil {
			groupMatches[*m.GroupID] = append(groupMatches[*m.GroupID], m)
		}
	}

	labels := make([]string, 0, len(groupTeams))
	for label := range groupTeams {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := make([]GroupStanding, 0, len(labels))
	for _, label := range labels {
		out = append(out, GroupStanding{
			Group:     label,
			Standings: ComputeGroupStandings(groupTeams[label], groupMatches[label]),
		})
	}
	return out
}
