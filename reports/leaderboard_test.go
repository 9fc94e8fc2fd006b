package reports

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Dosada05/poker-league/models"
)

func TestWriteLeaderboardXLSX(t *testing.T) {
	leaderboard := &models.Leaderboard{
		Tournament: &models.Tournament{ID: 3, Name: "Season"},
		Standings: []*models.TournamentStanding{
			{UserID: 11, TotalPoints: 540, GamesPlayed: 2, AveragePlace: 1.5, BestPlace: 1, Position: 1, InGrandFinal: true},
			{UserID: 12, TotalPoints: 90, GamesPlayed: 1, AveragePlace: 7, BestPlace: 7, Position: 2},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLeaderboardXLSX(&buf, leaderboard))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(standingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Position", rows[0][0])
	assert.Equal(t, "Grand final", rows[0][6])
	assert.Equal(t, []string{"1", "11", "540", "2", "1.5", "1", "TRUE"}, rows[1])
	assert.Equal(t, "FALSE", rows[2][6])
	assert.Equal(t, "standings-3.xlsx", LeaderboardFilename(leaderboard.Tournament))
}

func TestWriteLeaderboardXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLeaderboardXLSX(&buf, &models.Leaderboard{Tournament: &models.Tournament{ID: 1}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(standingsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
