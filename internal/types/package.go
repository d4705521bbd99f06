package types

// PinRecord is the version a manifest declares for a dependency. Name keeps
// the manifest's spelling for display.
type PinRecord struct {
	Name    string
	Version string
}

type InstalledRecord struct {
	Name    string
	Version string
}

type IndexRecord struct {
	Name     string
	Newest   string
	Versions []string
}

// Pins and Installed are keyed by normalized package name.
type Pins map[string]PinRecord

type Installed map[string]InstalledRecord

// ComparisonRow joins the three sources for a single pinned package.
// Missing values are empty strings.
type ComparisonRow struct {
	Name      string
	Installed string
	Pinned    string
	Newest    string
	Action    string
	Malformed bool
}

type Comparison struct {
	OutOfDate   []ComparisonRow
	CanBeBumped []ComparisonRow
}
