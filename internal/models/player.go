package models

// PlayerStatistics is the statistics document for one player in one mode.
type PlayerStatistics struct {
	Username   string     `json:"username"`
	UUID       string     `json:"uuid"`
	Statistics Statistics `json:"statistics"`
}

// DisplayName returns the upstream username, or fallback when it is blank.
func (p *PlayerStatistics) DisplayName(fallback string) string {
	if p == nil || p.Username == "" {
		return fallback
	}
	return p.Username
}

// Profile is the per-mode player profile.
type Profile struct {
	Username string `json:"username"`
	UUID     string `json:"uuid"`
	// TotalPlaytime is reported in milliseconds despite the upstream field name.
	TotalPlaytime Number `json:"totalPlaytimeSeconds"`
}

// PlaytimeHours converts the profile playtime to whole hours.
func (p *Profile) PlaytimeHours() int64 {
	if p == nil {
		return 0
	}
	return MillisToHours(p.TotalPlaytime)
}

// MillisToHours converts a millisecond count to whole hours.
func MillisToHours(ms Number) int64 {
	v := ms.Int64()
	if v <= 0 {
		return 0
	}
	return v / 1000 / 3600
}
