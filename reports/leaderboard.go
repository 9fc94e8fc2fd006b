// Package reports renders season standings into downloadable files.
package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Dosada05/poker-league/models"
)

const standingsSheet = "Standings"

var standingsHeader = []interface{}{
	"Position", "User ID", "Total points", "Games played", "Average place", "Best place", "Grand final",
}

// WriteLeaderboardXLSX пишет таблицу сезона в одну вкладку XLSX.
func WriteLeaderboardXLSX(w io.Writer, leaderboard *models.Leaderboard) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", standingsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := standingsHeader
	if err := f.SetSheetRow(standingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastCol, err := excelize.CoordinatesToCellName(len(standingsHeader), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(standingsSheet, "A1", lastCol, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, s := range leaderboard.Standings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			s.Position, s.UserID, s.TotalPoints, s.GamesPlayed, s.AveragePlace, s.BestPlace, s.InGrandFinal,
		}
		if err := f.SetSheetRow(standingsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(standingsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// LeaderboardFilename returns the attachment name for a tournament export.
func LeaderboardFilename(t *models.Tournament) string {
	return fmt.Sprintf("standings-%d.xlsx", t.ID)
}
