/*
Package registry loads and maintains the ordered list of feed sources a news update
polls. The registry is a TOML file of [[feeds]] tables; a default registry is embedded
in the binary.
*/
package registry

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/shanehull/newsgrid/internal/types"
)

//go:embed feeds.toml
var defaultRegistry []byte

var (
	ErrDuplicateName = errors.New("source name already registered")
	ErrDuplicateURL  = errors.New("feed URL already registered")
)

type file struct {
	Feeds []types.FeedSource `toml:"feeds"`
}

// Default returns the embedded registry.
func Default() ([]types.FeedSource, error) {
	return parse(defaultRegistry)
}

func Load(path string) ([]types.FeedSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading feed registry: %w", err)
	}
	return parse(data)
}

func parse(data []byte) ([]types.FeedSource, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing feed registry: %w", err)
	}

	for i := range f.Feeds {
		f.Feeds[i].Name = strings.TrimSpace(f.Feeds[i].Name)
		f.Feeds[i].URL = strings.TrimSpace(f.Feeds[i].URL)
	}

	if err := Validate(f.Feeds); err != nil {
		return nil, err
	}
	return f.Feeds, nil
}

// Validate rejects empty fields and case-insensitive duplicate names or URLs.
func Validate(sources []types.FeedSource) error {
	names := make(map[string]struct{}, len(sources))
	urls := make(map[string]struct{}, len(sources))

	for i, src := range sources {
		if src.Name == "" || src.URL == "" {
			return fmt.Errorf("feed #%d: name and url are required", i+1)
		}
		name := strings.ToLower(src.Name)
		url := strings.ToLower(src.URL)
		if _, ok := names[name]; ok {
			return fmt.Errorf("feed %q: %w", src.Name, ErrDuplicateName)
		}
		if _, ok := urls[url]; ok {
			return fmt.Errorf("feed %q (%s): %w", src.Name, src.URL, ErrDuplicateURL)
		}
		names[name] = struct{}{}
		urls[url] = struct{}{}
	}
	return nil
}

// Contains returns ErrDuplicateName or ErrDuplicateURL when candidate collides with
// an existing source, comparing case-insensitively. The name is checked first.
func Contains(sources []types.FeedSource, candidate types.FeedSource) error {
	for _, src := range sources {
		if strings.EqualFold(src.Name, candidate.Name) {
			return ErrDuplicateName
		}
	}
	for _, src := range sources {
		if strings.EqualFold(src.URL, candidate.URL) {
			return ErrDuplicateURL
		}
	}
	return nil
}

// Append adds src as the last record of the registry at path. Existing bytes are left
// untouched. A missing file is first seeded with the embedded registry.
func Append(path string, src types.FeedSource) error {
	src.Name = strings.TrimSpace(src.Name)
	src.URL = strings.TrimSpace(src.URL)
	if src.Name == "" || src.URL == "" {
		return errors.New("name and url are required")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		data = append([]byte(nil), defaultRegistry...)
	} else if err != nil {
		return fmt.Errorf("error reading feed registry: %w", err)
	}

	existing, err := parse(data)
	if err != nil {
		return err
	}
	if err := Contains(existing, src); err != nil {
		return err
	}

	var record bytes.Buffer
	enc := toml.NewEncoder(&record)
	enc.Indent = ""
	if err := enc.Encode(file{Feeds: []types.FeedSource{src}}); err != nil {
		return fmt.Errorf("error encoding feed record: %w", err)
	}

	var out bytes.Buffer
	out.Write(data)
	if len(data) > 0 && !bytes.HasSuffix(data, []byte("\n")) {
		out.WriteByte('\n')
	}
	if len(data) > 0 {
		out.WriteByte('\n')
	}
	out.Write(record.Bytes())

	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("error writing feed registry %s: %w", path, err)
	}
	return nil
}
