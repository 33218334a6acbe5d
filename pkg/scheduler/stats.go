package scheduler

import "github.com/arnavshah/carpool-scheduler-api/pkg/models"

// CalculateStats reports, per day, how many seats were offered and how many
// riders were placed. FillRate is placed riders over offered seats (0-100).
func CalculateStats(schedule models.Schedule, drivers []*models.Driver) []models.DayStats {
	stats := make([]models.DayStats, 0, len(schedule))
	for _, ds := range schedule {
		st := models.DayStats{
			Day:            ds.Day,
			SeatsOffered:   NewSeatTracker(drivers).Total(ds.Day),
			RidersUnplaced: len(ds.Unmatched),
		}
		for _, car := range ds.Cars {
			st.RidersPlaced += len(car.Riders)
		}
		if st.SeatsOffered > 0 {
			st.FillRate = float64(st.RidersPlaced) / float64(st.SeatsOffered) * 100.0
		}
		stats = append(stats, st)
	}
	return stats
}
