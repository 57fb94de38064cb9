package catalog

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nulzo/openroute/pkg/api"
	"gopkg.in/yaml.v3"
)

// SnapshotEntry is the YAML shape of one catalog model.
type SnapshotEntry struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	ContextLength   int    `yaml:"context_length,omitempty"`
	Modality        string `yaml:"modality,omitempty"`
	PromptPrice     string `yaml:"prompt_price,omitempty"`
	CompletionPrice string `yaml:"completion_price,omitempty"`
}

type Snapshot struct {
	Provider  string          `yaml:"provider"`
	FetchedAt time.Time       `yaml:"fetched_at"`
	Models    []SnapshotEntry `yaml:"models"`
}

func NewSnapshot(provider string, models []api.Model, at time.Time) Snapshot {
	s := Snapshot{Provider: provider, FetchedAt: at.UTC(), Models: make([]SnapshotEntry, 0, len(models))}
	for _, m := range models {
		s.Models = append(s.Models, SnapshotEntry{
			ID:              m.ID,
			Name:            m.Name,
			ContextLength:   m.ContextLength,
			Modality:        m.Architecture.Modality,
			PromptPrice:     m.Pricing.Prompt,
			CompletionPrice: m.Pricing.Completion,
		})
	}
	return s
}

// WriteSnapshot encodes s as YAML.
func WriteSnapshot(w io.Writer, s Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return enc.Close()
}

func SaveSnapshot(path string, s Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSnapshot(f, s); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func LoadSnapshot(path string) (Snapshot, error) {
	var s Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return s, nil
}
