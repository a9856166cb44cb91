package command

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxDepth caps directory recursion below the root.
const MaxDepth = 5

// RunPath is the HTTP path prefix leaf commands are exposed under.
const RunPath = "api/run"

// Build discovers the command tree rooted at rootDir. A failure on one entry
// is logged and skipped; only an unreadable or non-directory root fails.
func Build(rootDir, httpBasePath string, logger *slog.Logger) (*Node, error) {
	if logger == nil {
		logger = slog.Default()
	}
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory %q: %w", rootDir, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root directory %q: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, &LookupError{Path: absRoot, Kind: ErrNotDirectory}
	}
	entries, err := os.ReadDir(absRoot)
	if err != nil {
		return nil, fmt.Errorf("could not read directory %q: %w", absRoot, err)
	}
	d := &discovery{
		basePath: path.Join("/", httpBasePath, RunPath),
		logger:   logger,
	}
	root := &Node{
		Name:        filepath.Base(absRoot),
		FilePath:    absRoot,
		HTTPPath:    d.basePath,
		IsDirectory: true,
	}
	root.Segments = []string{root.Name}
	root.Children = d.children(root, entries, MaxDepth)
	return root, nil
}

type discovery struct {
	basePath string
	logger   *slog.Logger
}

func (d *discovery) children(parent *Node, entries []os.DirEntry, depth int) map[string]*Node {
	ret := make(map[string]*Node)
	for _, entry := range entries {
		location := filepath.Join(parent.FilePath, entry.Name())
		info, err := os.Stat(location)
		if err != nil {
			d.logger.Warn("could not stat command entry", "path", location, "error", err)
			continue
		}
		segments := append(append([]string{}, parent.Segments...), entry.Name())
		node := &Node{
			Name:     entry.Name(),
			FilePath: location,
			HTTPPath: path.Join(d.basePath, path.Join(segments[1:]...)),
			Segments: segments,
		}
		switch {
		case info.IsDir():
			node.IsDirectory = true
			node.Children = d.directory(node, depth-1)
		case info.Mode().IsRegular():
			if info.Mode().Perm()&0o111 == 0 {
				if ext := strings.ToLower(filepath.Ext(location)); ext == ".yaml" || ext == ".yml" {
					continue
				}
				d.logger.Warn("file is not executable and discarded", "path", location)
				continue
			}
			node.Descriptor, node.DescriptorPath, node.DescriptorError = LoadDescriptor(location)
			if node.DescriptorError != nil {
				d.logger.Error("invalid command information", "path", location, "error", node.DescriptorError)
			} else {
				d.logger.Debug("detected command", "name", node.Name, "path", location)
			}
		default:
			d.logger.Warn("entry is not a regular file or directory and discarded", "path", location)
			continue
		}
		ret[node.Name] = node
	}
	return ret
}

func (d *discovery) directory(node *Node, depth int) map[string]*Node {
	if depth <= 0 {
		d.logger.Warn("maximum depth of command directories reached, directory skipped",
			"max_depth", MaxDepth, "path", node.FilePath)
		return map[string]*Node{}
	}
	entries, err := os.ReadDir(node.FilePath)
	if err != nil {
		d.logger.Warn("could not read directory", "path", node.FilePath, "error", err)
		return map[string]*Node{}
	}
	return d.children(node, entries, depth)
}

// DescriptorCandidates lists sidecar locations checked for an executable, in order.
func DescriptorCandidates(exePath string) []string {
	ret := []string{exePath + ".yaml", exePath + ".yml"}
	if ext := filepath.Ext(exePath); ext != "" {
		stem := strings.TrimSuffix(exePath, ext)
		ret = append(ret, stem+".yaml", stem+".yml")
	}
	return ret
}

// LoadDescriptor reads and validates the sidecar of exePath. A missing or
// blank sidecar yields a descriptor described by the file name.
func LoadDescriptor(exePath string) (*Descriptor, string, error) {
	synthesized := &Descriptor{Description: filepath.Base(exePath), Options: map[string]*Option{}}
	for _, candidate := range DescriptorCandidates(exePath) {
		info, err := os.Stat(candidate)
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() {
			return nil, candidate, fmt.Errorf("command information file %q is not a regular file", candidate)
		}
		data, err := os.ReadFile(candidate)
		if err != nil {
			return nil, candidate, fmt.Errorf("could not read command information file %q: %w", candidate, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return synthesized, candidate, nil
		}
		descriptor := &Descriptor{}
		if err := yaml.Unmarshal(data, descriptor); err != nil {
			return nil, candidate, fmt.Errorf("could not decode command information %q: %w", candidate, err)
		}
		if descriptor.Options == nil {
			descriptor.Options = map[string]*Option{}
		}
		if err := descriptor.Validate(); err != nil {
			return nil, candidate, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
		}
		return descriptor, candidate, nil
	}
	return synthesized, "", nil
}
