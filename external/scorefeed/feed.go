package scorefeed

// Wire types for the public scoreboard site API. Only the fields the
// resolver needs are mapped; everything else is ignored.

type scoreboardEnvelope struct {
	Events []eventItem `json:"events"`
}

type eventItem struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Competitions []competitionItem `json:"competitions"`
	Status       statusItem        `json:"status"`
}

type competitionItem struct {
	ID          string           `json:"id"`
	Competitors []competitorItem `json:"competitors"`
}

type competitorItem struct {
	HomeAway   string          `json:"homeAway"`
	Score      string          `json:"score"`
	Team       teamItem        `json:"team"`
	Linescores []linescoreItem `json:"linescores"`
}

type teamItem struct {
	DisplayName  string `json:"displayName"`
	Abbreviation string `json:"abbreviation"`
}

// linescoreItem carries the points scored within one period (not
// cumulative); the API reports the value as a float.
type linescoreItem struct {
	Value float64 `json:"value"`
}

type statusItem struct {
	Period int        `json:"period"`
	Type   statusType `json:"type"`
}

type statusType struct {
	State     string `json:"state"`
	Completed bool   `json:"completed"`
}
