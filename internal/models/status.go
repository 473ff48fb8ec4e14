package models

// ServerStatus is the public status of the game server.
type ServerStatus struct {
	Online  bool   `json:"online"`
	Version string `json:"version"`
	Players struct {
		Online int `json:"online"`
		Max    int `json:"max"`
	} `json:"players"`
	MOTD struct {
		Clean []string `json:"clean"`
	} `json:"motd"`
}

// CurrentPlayers returns the online player count, zero when offline.
func (s *ServerStatus) CurrentPlayers() int {
	if s == nil || !s.Online {
		return 0
	}
	return s.Players.Online
}

// VersionOrUnknown returns the reported version string.
func (s *ServerStatus) VersionOrUnknown() string {
	if s == nil || s.Version == "" {
		return "Unknown"
	}
	return s.Version
}

// PopulationReport is the answer to a live population query.
type PopulationReport struct {
	Online      bool
	Current     int
	Max         int
	Version     string
	MOTD        []string
	Peak24h     int
	PeakAllTime int
}
