package models

// DataSource tags where the mean used by the model came from.
type DataSource string

const (
	SourceSportsData          DataSource = "sportsdata"
	SourceLeagueAverage       DataSource = "league_average"
	SourceStatisticalBaseline DataSource = "statistical_baseline"
	SourceHardDefault         DataSource = "hard_default"
)

// ResolvedIdentity is the provider subject matched to a requested name.
type ResolvedIdentity struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	MatchScore  float64 `json:"matchScore"`
	IsAmbiguous bool    `json:"isAmbiguous"`
}

// FeatureSet is the per-subject data the probability model consumes.
// RecentSample is ordered newest first.
type FeatureSet struct {
	RecentSample  []float64  `json:"recentSample"`
	SeasonAverage *float64   `json:"seasonAverage,omitempty"`
	LeagueAverage *float64   `json:"leagueAverage,omitempty"`
	UsedAverage   float64    `json:"usedAverage"`
	Variance      float64    `json:"variance"`
	DataSource    DataSource `json:"dataSource"`
	FilteredRows  int        `json:"filteredRows"`
}

// SampleSize returns the number of participating games collected.
func (f FeatureSet) SampleSize() int {
	return len(f.RecentSample)
}

// RecentMean returns the mean of the recent sample and false when it is empty.
func (f FeatureSet) RecentMean() (float64, bool) {
	if len(f.RecentSample) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range f.RecentSample {
		sum += v
	}
	return sum / float64(len(f.RecentSample)), true
}
