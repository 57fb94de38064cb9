package gateway

import (
	"strings"

	"github.com/nulzo/openroute/pkg/api"
)

// matches applies the non-provider parts of a ModelFilter.
func matches(m api.Model, filter api.ModelFilter) bool {
	if filter.ID != "" && !strings.Contains(strings.ToLower(m.ID), strings.ToLower(filter.ID)) {
		return false
	}

	if filter.Modality != "" {
		if strings.Contains(strings.ToLower(m.Architecture.Modality), strings.ToLower(filter.Modality)) {
			return true
		}
		for _, mod := range m.Architecture.InputModalities {
			if strings.EqualFold(mod, filter.Modality) {
				return true
			}
		}
		return false
	}

	return true
}
