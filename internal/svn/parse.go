package svn

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/pmanser/svnd/internal/domain"
	"github.com/pmanser/svnd/internal/errors"
)

// infoXML mirrors the output of `svn info --xml`.
type infoXML struct {
	XMLName xml.Name `xml:"info"`
	Entry   struct {
		Kind     string `xml:"kind,attr"`
		Revision int64  `xml:"revision,attr"`
		URL      string `xml:"url"`
		Repo     struct {
			Root string `xml:"root"`
			UUID string `xml:"uuid"`
		} `xml:"repository"`
		Commit commitXML `xml:"commit"`
	} `xml:"entry"`
}

// listsXML mirrors the output of `svn list --xml`.
type listsXML struct {
	XMLName xml.Name `xml:"lists"`
	List    struct {
		Path    string     `xml:"path,attr"`
		Entries []entryXML `xml:"entry"`
	} `xml:"list"`
}

type entryXML struct {
	Kind   string    `xml:"kind,attr"`
	Name   string    `xml:"name"`
	Size   *int64    `xml:"size"`
	Commit commitXML `xml:"commit"`
}

// logXML mirrors the output of `svn log --xml --verbose`.
type logXML struct {
	XMLName xml.Name      `xml:"log"`
	Entries []logEntryXML `xml:"logentry"`
}

type logEntryXML struct {
	Revision int64  `xml:"revision,attr"`
	Author   string `xml:"author"`
	Date     string `xml:"date"`
	Message  string `xml:"msg"`
	Paths    struct {
		Paths []pathXML `xml:"path"`
	} `xml:"paths"`
}

type pathXML struct {
	Kind   string `xml:"kind,attr"`
	Action string `xml:"action,attr"`
	Path   string `xml:",chardata"`
}

// diffXML mirrors the output of `svn diff --xml --summarize`.
type diffXML struct {
	XMLName xml.Name `xml:"diff"`
	Paths   struct {
		Paths []diffPathXML `xml:"path"`
	} `xml:"paths"`
}

type diffPathXML struct {
	Props string `xml:"props,attr"`
	Kind  string `xml:"kind,attr"`
	Item  string `xml:"item,attr"`
	Path  string `xml:",chardata"`
}

// commitXML is the shared last-commit element on info and list entries.
// Author is optional; an absent element yields the empty string.
type commitXML struct {
	Revision int64  `xml:"revision,attr"`
	Author   string `xml:"author"`
	Date     string `xml:"date"`
}

// parseTime normalizes a backend timestamp to UTC.
// The backend emits RFC 3339 with fractional seconds (e.g. 2011-05-02T19:20:45.810000Z).
func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad timestamp '%s': %v", errors.ErrBackendParse, raw, err)
	}
	return ts.UTC(), nil
}

// parseInfo converts `svn info --xml` output into a repository record.
// The record's name is the base name of the repository URL, and the web path
// reflects the URL's position below the repository root, matching how the
// browse routes are laid out.
func parseInfo(data []byte) (domain.RepositoryRecord, error) {
	var parsed infoXML
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return domain.RepositoryRecord{}, fmt.Errorf("%w: info: %v", errors.ErrBackendParse, err)
	}

	url := strings.TrimRight(parsed.Entry.URL, "/")
	name := path.Base(url)

	ts, err := parseTime(parsed.Entry.Commit.Date)
	if err != nil {
		return domain.RepositoryRecord{}, err
	}

	return domain.RepositoryRecord{
		Name:             name,
		URL:              url,
		RootURL:          parsed.Entry.Repo.Root,
		LastChangedRev:   parsed.Entry.Commit.Revision,
		LastChangedAt:    ts,
		LastChangedAtRaw: parsed.Entry.Commit.Date,
		WebPath:          "/" + name + strings.TrimPrefix(url, strings.TrimRight(parsed.Entry.Repo.Root, "/")),
	}, nil
}

// parseList converts `svn list --xml` output into directory entries.
// webBase is the browse path prefix each entry's web path is computed under.
func parseList(data []byte, webBase string) ([]domain.Entry, error) {
	var parsed listsXML
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: list: %v", errors.ErrBackendParse, err)
	}

	entries := make([]domain.Entry, 0, len(parsed.List.Entries))
	for _, e := range parsed.List.Entries {
		ts, err := parseTime(e.Commit.Date)
		if err != nil {
			return nil, err
		}

		kind := domain.EntryKind(e.Kind)
		var size *int64
		if kind == domain.EntryKindFile && e.Size != nil {
			v := *e.Size
			size = &v
		}

		entries = append(entries, domain.Entry{
			Kind:     kind,
			Name:     e.Name,
			Revision: e.Commit.Revision,
			Author:   e.Commit.Author,
			Date:     ts,
			DateRaw:  e.Commit.Date,
			Size:     size,
			WebPath:  strings.TrimRight(webBase, "/") + "/" + e.Name,
		})
	}
	return entries, nil
}

// parseLog converts `svn log --xml` output into log entries, preserving the
// backend's ordering verbatim.
func parseLog(data []byte) ([]domain.LogEntry, error) {
	var parsed logXML
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: log: %v", errors.ErrBackendParse, err)
	}

	entries := make([]domain.LogEntry, 0, len(parsed.Entries))
	for _, e := range parsed.Entries {
		ts, err := parseTime(e.Date)
		if err != nil {
			return nil, err
		}

		var paths []domain.PathChange
		for _, p := range e.Paths.Paths {
			paths = append(paths, domain.PathChange{
				Path:   strings.TrimSpace(p.Path),
				Kind:   p.Kind,
				Action: p.Action,
			})
		}

		entries = append(entries, domain.LogEntry{
			Revision: e.Revision,
			Author:   e.Author,
			Date:     ts,
			DateRaw:  e.Date,
			Message:  e.Message,
			Paths:    paths,
		})
	}
	return entries, nil
}

// parseDiffSummary converts `svn diff --xml --summarize` output into per-path
// change summaries.
func parseDiffSummary(data []byte) ([]domain.ChangeSummary, error) {
	var parsed diffXML
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: diff summarize: %v", errors.ErrBackendParse, err)
	}

	summaries := make([]domain.ChangeSummary, 0, len(parsed.Paths.Paths))
	for _, p := range parsed.Paths.Paths {
		summaries = append(summaries, domain.ChangeSummary{
			Path:          strings.TrimSpace(p.Path),
			Kind:          p.Kind,
			Item:          p.Item,
			PropsModified: p.Props != "" && p.Props != "none",
		})
	}
	return summaries, nil
}
