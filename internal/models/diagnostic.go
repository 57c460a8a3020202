package models

// Diagnostic sources
const (
	SourceWARC     = "warc"
	SourceSidecar  = "sidecar"
	SourceJSONFile = "json_file"
)

// DiagnosticEntry describes one exchange seen during decoding, JSON or not
type DiagnosticEntry struct {
	URL         string `json:"url"`
	Method      string `json:"method"`
	Status      string `json:"status"`
	ContentType string `json:"content_type"`
	IsJSON      bool   `json:"is_json"`
	PageURL     string `json:"page_url,omitempty"`
	PageID      string `json:"page_id,omitempty"`
	Archive     string `json:"archive,omitempty"`
	Source      string `json:"source"`
}

// DiagnosticLog is an append-only list of entries returned by each decoding stage
type DiagnosticLog struct {
	Entries []DiagnosticEntry `json:"entries"`
}

// PageGroup holds the entries that share one page URL
type PageGroup struct {
	PageURL string
	Entries []DiagnosticEntry
}

func (dl *DiagnosticLog) Add(entry DiagnosticEntry) {
	dl.Entries = append(dl.Entries, entry)
}

// Merge appends other's entries after the receiver's
func (dl *DiagnosticLog) Merge(other DiagnosticLog) {
	dl.Entries = append(dl.Entries, other.Entries...)
}

func (dl *DiagnosticLog) Len() int {
	return len(dl.Entries)
}

// JSONCount counts the entries classified as JSON
func (dl *DiagnosticLog) JSONCount() int {
	n := 0
	for _, e := range dl.Entries {
		if e.IsJSON {
			n++
		}
	}
	return n
}

// ByPage groups entries by page URL in first-seen order. Entries without a page fall under "".
func (dl *DiagnosticLog) ByPage() []PageGroup {
	var groups []PageGroup
	index := make(map[string]int)
	for _, e := range dl.Entries {
		i, ok := index[e.PageURL]
		if !ok {
			i = len(groups)
			index[e.PageURL] = i
			groups = append(groups, PageGroup{PageURL: e.PageURL})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}
