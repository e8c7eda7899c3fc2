package predictor

import (
	"fmt"
	"strings"

	"github.com/yourusername/keiba-predictor/internal/models"
	"github.com/yourusername/keiba-predictor/internal/pace"
)

// buildReasoning renders the prediction as tipster-style Japanese text. The
// sections mirror a newspaper mark sheet: ◎ top pick, ○ second, ▲ third,
// ☆ dark horses.
func buildReasoning(
	race models.RaceContext,
	p *pace.Result,
	rankings []models.HorsePrediction,
	tickets *models.BetTicketSet,
	usedML bool,
) string {
	var b strings.Builder

	b.WriteString("■展開予想\n")
	fmt.Fprintf(&b, "%s(確度%.0f%%)。%s\n", pace.Labels[p.PaceType], p.Confidence*100, p.Reason)
	if desc := p.VenueDescription; desc != "" {
		fmt.Fprintf(&b, "%s。\n", desc)
	}

	if len(rankings) > 0 {
		top := rankings[0]
		b.WriteString("\n■本命\n")
		fmt.Fprintf(&b, "◎%d番%s(スコア%.2f・勝率%.0f%%)\n",
			top.HorseNumber, top.HorseName, top.Score, top.WinProbability*100)
	}

	if len(rankings) > 1 {
		b.WriteString("\n■対抗・単穴\n")
		marks := []string{"○", "▲"}
		for i, r := range rankings[1:min(3, len(rankings))] {
			fmt.Fprintf(&b, "%s%d番%s(スコア%.2f)\n", marks[i], r.HorseNumber, r.HorseName, r.Score)
		}
	}

	var darkHorses []models.HorsePrediction
	for _, r := range rankings {
		if r.IsDarkHorse {
			darkHorses = append(darkHorses, r)
		}
	}
	if len(darkHorses) > 0 {
		b.WriteString("\n■穴馬注目\n")
		for _, d := range darkHorses {
			fmt.Fprintf(&b, "☆%d番%s: %s\n", d.HorseNumber, d.HorseName, d.DarkHorseReason)
		}
	}

	if tickets != nil && tickets.Note != "" {
		b.WriteString("\n■買い目のポイント\n")
		b.WriteString(tickets.Note)
		b.WriteString("\n")
	}

	if usedML {
		b.WriteString("\n※AI予測モデルのスコアを併用しています\n")
	}

	return b.String()
}
