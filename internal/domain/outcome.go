package domain

// URLTask is one user-supplied URL assigned to a worker slot. Immutable
// once created.
type URLTask struct {
	URL  string
	Slot int
}

// DownloadOutcome is the terminal result of one URLTask. Workers never
// return errors; every failure mode is folded into an outcome value.
type DownloadOutcome struct {
	URL       string
	Success   bool
	ItemCount int
	Title     string
	Kind      ContentKind
	Error     string
}

// FailedDownload pairs a failed URL with its captured reason
type FailedDownload struct {
	URL    string
	Reason string
}

// BatchSummary aggregates the outcomes of a download batch. The failure
// list carries no ordering guarantee.
type BatchSummary struct {
	TotalURLs       int
	SuccessfulItems int
	FailedItems     int
	Failed          []FailedDownload
	Outcomes        []DownloadOutcome
	OutputPath      string
}

// Add folds one outcome into the summary
func (s *BatchSummary) Add(outcome DownloadOutcome) {
	s.Outcomes = append(s.Outcomes, outcome)
	if outcome.Success {
		s.SuccessfulItems += outcome.ItemCount
	} else {
		count := outcome.ItemCount
		if count == 0 {
			count = 1
		}
		s.FailedItems += count
		s.Failed = append(s.Failed, FailedDownload{URL: outcome.URL, Reason: outcome.Error})
	}
}

// ContentMix is the pre-flight classification summary for a batch
type ContentMix struct {
	Videos    int
	Playlists int
	Channels  int
}
