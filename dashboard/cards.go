package dashboard

// Card is one metric tile on the dashboard.
type Card struct {
	Key   string
	Icon  string
	Label string
	Value *int64
}

// Cards lists the metric tiles for data. API hits and endpoint stats stay in
// the snapshot but have no tile yet.
func Cards(data Snapshot) []Card {
	return []Card{
		{Key: "unique_users", Icon: "👥", Label: "Unique Users", Value: data.UniqueUsers},
		{Key: "total_visits", Icon: "🌐", Label: "Total Visits", Value: data.TotalVisits},
	}
}
