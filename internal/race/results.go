package race

import "time"

type ParticipantResult struct {
	ID       string   `json:"id"`
	WPM      float64  `json:"wpm"`
	Progress float64  `json:"progress"`
	Finished bool     `json:"finished"`
	Accuracy *float64 `json:"accuracy,omitempty"`
}

// Results is the final aggregation broadcast once per room. Winner is empty
// when the top WPM is shared; the server never invents a tiebreak.
type Results struct {
	Participants []ParticipantResult `json:"participants"`
	Winner       string              `json:"winner,omitempty"`
	EndTime      int64               `json:"endTime"`
}

// ComputeResults assembles the final standings. accuracyOf surfaces the
// accuracy a participant self-reported at finish time, or nil if they never
// did; an absent value stays absent in the payload.
func ComputeResults(r *Room, accuracyOf func(id string) *float64, now time.Time) Results {
	finished := make(map[string]bool, len(r.FinishedOrder))
	for _, id := range r.FinishedOrder {
		finished[id] = true
	}

	res := Results{
		Participants: make([]ParticipantResult, 0, len(r.Participants)),
		EndTime:      now.UnixMilli(),
	}
	for _, id := range r.Participants {
		res.Participants = append(res.Participants, ParticipantResult{
			ID:       id,
			WPM:      r.WPM[id],
			Progress: r.Progress[id],
			Finished: finished[id],
			Accuracy: accuracyOf(id),
		})
	}
	res.Winner = winner(res.Participants)
	return res
}

// winner returns the participant with the strictly highest WPM, or "" on a
// tie for the top spot.
func winner(participants []ParticipantResult) string {
	if len(participants) == 0 {
		return ""
	}
	best := participants[0]
	tied := false
	for _, p := range participants[1:] {
		switch {
		case p.WPM > best.WPM:
			best = p
			tied = false
		case p.WPM == best.WPM:
			tied = true
		}
	}
	if tied {
		return ""
	}
	return best.ID
}
