package run

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/runshape/pkg/errors"
)

// Format identifies a snapshot encoding.
type Format string

// Supported snapshot encodings.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the snapshot format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported snapshot extension %q (want .json, .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// DecodeFile reads and validates a snapshot file. The format is inferred
// from the file extension.
func DecodeFile(path string) (*Snapshot, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "snapshot %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, format)
}

// Decode parses a snapshot in the given format, normalizes its shape and
// validates it.
func Decode(r io.Reader, format Format) (*Snapshot, error) {
	var snap Snapshot
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&snap); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json snapshot")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&snap); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml snapshot")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&snap); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml snapshot")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported snapshot format %q", format)
	}
	return normalized(&snap)
}

// normalized cleans the shape of a freshly decoded snapshot, records what
// was removed, and validates the result.
func normalized(s *Snapshot) (*Snapshot, error) {
	out, stats := s.Normalize()
	out.Normalized = stats
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Unmarshal decodes and validates a JSON snapshot held in memory.
func Unmarshal(data []byte) (*Snapshot, error) {
	return Decode(bytes.NewReader(data), FormatJSON)
}

// Encode writes the snapshot in the given format.
func Encode(w io.Writer, s *Snapshot, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(s)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported snapshot format %q", format)
	}
}

// =============================================================================
// Run-details wire format
// =============================================================================

// wireDetails mirrors the workflow-run details response of the orchestration
// API: task summaries nest their id under metadata and name the shape id
// taskExternalId.
type wireDetails struct {
	Run *struct {
		Metadata wireMetadata `json:"metadata"`
	} `json:"run"`
	Tasks []wireTask  `json:"tasks"`
	Shape []ShapeEdge `json:"shape"`
}

type wireMetadata struct {
	ID        string     `json:"id"`
	CreatedAt *time.Time `json:"createdAt"`
}

type wireTask struct {
	Metadata       wireMetadata `json:"metadata"`
	TaskExternalID string       `json:"taskExternalId"`
	DisplayName    string       `json:"displayName"`
	Status         Status       `json:"status"`
	StartedAt      *time.Time   `json:"startedAt"`
	FinishedAt     *time.Time   `json:"finishedAt"`
}

// DecodeRunDetails parses a workflow-run details API response into a
// normalized, validated snapshot.
func DecodeRunDetails(r io.Reader) (*Snapshot, error) {
	var wire wireDetails
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode run details")
	}

	snap := &Snapshot{
		Tasks: make([]Task, len(wire.Tasks)),
		Shape: wire.Shape,
	}
	if wire.Run != nil {
		snap.RunID = wire.Run.Metadata.ID
	}
	for i, t := range wire.Tasks {
		snap.Tasks[i] = Task{
			ID:          t.Metadata.ID,
			ExternalID:  t.TaskExternalID,
			DisplayName: t.DisplayName,
			Status:      t.Status,
			CreatedAt:   t.Metadata.CreatedAt,
			StartedAt:   t.StartedAt,
			FinishedAt:  t.FinishedAt,
		}
	}
	return normalized(snap)
}
