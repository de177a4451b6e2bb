// Package filesystem is a reference MetadataProvider (spec §4.7) that
// harvests from a directory of XML files on disk, grounded on the
// reference implementation's SkeletonProvider: every concept that
// provider stubs out (formats, identifiers, sets, record lookup) is
// backed here by real files instead of hardcoded examples.
//
// Layout:
//
//	<root>/<identifier>/<prefix>.xml   metadata, one file per format
//	<root>/<identifier>/sets           optional, one set spec per line ("spec name")
//
// oai_dc is always advertised, per the OAI-PMH requirement that every
// repository support it; its namespace/schema are registered as first
// class so Format creation never references an unknown namespace.
package filesystem

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/turahe/kuha-go/internal/provider"
)

func init() {
	provider.Register("filesystem", New)
}

const (
	oaiDCPrefix    = "oai_dc"
	oaiDCNamespace = "http://www.openarchives.org/OAI/2.0/oai_dc/"
	oaiDCSchema    = "http://www.openarchives.org/OAI/2.0/oai_dc.xsd"
)

// Provider reads (identifier, prefix) records from a directory tree.
type Provider struct {
	root string
}

// New builds a Provider rooted at args[0]. This is the factory
// registered under the name "filesystem" in metadata_provider_class.
func New(args []string) (provider.MetadataProvider, error) {
	if len(args) == 0 || args[0] == "" {
		return nil, fmt.Errorf("filesystem provider: requires a root directory argument")
	}
	info, err := os.Stat(args[0])
	if err != nil {
		return nil, fmt.Errorf("filesystem provider: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("filesystem provider: %q is not a directory", args[0])
	}
	return &Provider{root: args[0]}, nil
}

// Formats always advertises oai_dc plus one entry per distinct
// "<prefix>.xml" filename found anywhere under root.
func (p *Provider) Formats(ctx context.Context) ([]provider.FormatDef, error) {
	seen := map[string]bool{oaiDCPrefix: true}
	formats := []provider.FormatDef{{Prefix: oaiDCPrefix, Namespace: oaiDCNamespace, Schema: oaiDCSchema}}

	entries, err := os.ReadDir(p.root)
	if err != nil {
		return nil, fmt.Errorf("filesystem provider: reading root: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(p.root, entry.Name()))
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".xml") {
				continue
			}
			prefix := strings.TrimSuffix(f.Name(), ".xml")
			if seen[prefix] {
				continue
			}
			seen[prefix] = true
			formats = append(formats, provider.FormatDef{
				Prefix:    prefix,
				Namespace: oaiDCNamespace,
				Schema:    oaiDCSchema,
			})
		}
	}
	return formats, nil
}

// Identifiers lists every immediate subdirectory name of root.
func (p *Provider) Identifiers(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return nil, fmt.Errorf("filesystem provider: reading root: %w", err)
	}

	var identifiers []string
	for _, entry := range entries {
		if entry.IsDir() {
			identifiers = append(identifiers, entry.Name())
		}
	}
	return identifiers, nil
}

// HasChanged reports whether any file under the item's directory was
// modified at or after since.
func (p *Provider) HasChanged(ctx context.Context, identifier string, since time.Time) (bool, error) {
	dir := filepath.Join(p.root, identifier)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("filesystem provider: %w", err)
	}

	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(since) {
			return true, nil
		}
	}
	return false, nil
}

// GetSets reads the item's "sets" file, one "spec name" pair per
// line.
func (p *Provider) GetSets(ctx context.Context, identifier string) ([]provider.SetDef, error) {
	path := filepath.Join(p.root, identifier, "sets")
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filesystem provider: %w", err)
	}
	defer file.Close()

	var sets []provider.SetDef
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		spec := parts[0]
		name := spec
		if len(parts) == 2 {
			name = strings.TrimSpace(parts[1])
		}
		sets = append(sets, provider.SetDef{Spec: spec, Name: name})
	}
	return sets, scanner.Err()
}

// GetRecord reads "<identifier>/<prefix>.xml", returning nil if it
// does not exist.
func (p *Provider) GetRecord(ctx context.Context, identifier, prefix string) (*string, error) {
	path := filepath.Join(p.root, identifier, prefix+".xml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filesystem provider: %w", err)
	}
	xml := string(data)
	return &xml, nil
}
