package types

type ReportRow struct {
	Name             string `json:"name" yaml:"name"`
	InstalledVersion string `json:"installed_version" yaml:"installed_version"`
	ProjectVersion   string `json:"project_version" yaml:"project_version"`
	NewestVersion    string `json:"newest_version" yaml:"newest_version"`
	SuggestedAction  string `json:"suggested_action" yaml:"suggested_action"`
}

// ReportDocument is the machine readable form of a Comparison.
type ReportDocument struct {
	OutOfDate   []ReportRow `json:"out_of_date" yaml:"out_of_date"`
	CanBeBumped []ReportRow `json:"can_be_bumped" yaml:"can_be_bumped"`
}
