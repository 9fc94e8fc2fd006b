package models

type DashboardStats struct {
	TournamentsTotal    int            `json:"tournaments_total"`
	GamesByStatus       map[string]int `json:"games_by_status"`
	ActiveRegistrations int            `json:"active_registrations"`
	PenaltiesTotal      int            `json:"penalties_total"`
	PenaltyPointsTotal  int            `json:"penalty_points_total"`
}
