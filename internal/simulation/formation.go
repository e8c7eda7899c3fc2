package simulation

import (
	"github.com/yourusername/keiba-predictor/internal/models"
)

// maxRowWidth is how many horses fit abreast in one formation row.
const maxRowWidth = 4

// formationGroups maps running styles onto the start-formation rows, front
// row first. Versatile runners settle midfield.
var formationGroups = []struct {
	label  string
	styles []models.RunningStyle
}{
	{"先頭", []models.RunningStyle{models.StyleEscape}},
	{"先行", []models.RunningStyle{models.StyleFront}},
	{"中団", []models.RunningStyle{models.StyleStalker, models.StyleVersatile}},
	{"後方", []models.RunningStyle{models.StyleCloser}},
}

// buildFormation groups the field by running style as it leaves the gate.
// Groups wider than a row split into multiple rows under the same label.
func buildFormation(runners []runner) models.StartFormation {
	formation := models.StartFormation{TotalHorses: len(runners)}

	rowIndex := 0
	for _, group := range formationGroups {
		var horses []models.FormationHorse
		for i := range runners {
			for _, style := range group.styles {
				if runners[i].style == style {
					horses = append(horses, models.FormationHorse{
						HorseNumber:  runners[i].number,
						HorseName:    runners[i].name,
						RunningStyle: runners[i].style,
					})
					break
				}
			}
		}

		for start := 0; start < len(horses); start += maxRowWidth {
			end := min(start+maxRowWidth, len(horses))
			rowIndex++
			formation.Rows = append(formation.Rows, models.FormationRow{
				RowIndex: rowIndex,
				RowLabel: group.label,
				Horses:   horses[start:end],
			})
		}
	}

	return formation
}
