package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/conceptmesh/core"
)

// parseConceptList extracts discovered concepts from a model completion. The
// prompts request a JSON array of {concept, content, relationship, weight}
// objects; models occasionally wrap it in prose or a code fence, so the
// parser scans for the outermost array before unmarshalling.
func parseConceptList(raw string) ([]core.DiscoveredConcept, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in completion")
	}

	var concepts []core.DiscoveredConcept
	if err := json.Unmarshal([]byte(raw[start:end+1]), &concepts); err != nil {
		return nil, fmt.Errorf("unmarshal concept list: %w", err)
	}

	out := concepts[:0]
	for _, c := range concepts {
		c.Concept = strings.TrimSpace(c.Concept)
		if c.Concept == "" {
			continue
		}
		if c.Weight <= 0 || c.Weight > 1 {
			c.Weight = 0.5
		}
		out = append(out, c)
	}
	return out, nil
}

// parseObject extracts the outermost JSON object from a model completion into
// dst.
func parseObject(raw string, dst any) error {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in completion")
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), dst); err != nil {
		return fmt.Errorf("unmarshal completion: %w", err)
	}
	return nil
}
