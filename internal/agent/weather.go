package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/nulzo/openroute/pkg/api"
)

// WeatherTool answers get_weather with a canned forecast.
type WeatherTool struct{}

func (WeatherTool) Function() api.FunctionDescription {
	return api.FunctionDescription{
		Name:        "get_weather",
		Description: "Call to get the current weather.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"location": map[string]interface{}{
					"type":        "string",
					"description": "Place to get the weather for.",
				},
			},
			"required": []string{"location"},
		},
	}
}

func (WeatherTool) Call(_ context.Context, args map[string]interface{}) (string, error) {
	location, ok := args["location"].(string)
	if !ok {
		return "", errors.New("location must be a string")
	}
	return Weather(location), nil
}

func Weather(location string) string {
	// exact match after lowercasing, surrounding spaces count
	if strings.ToLower(location) == "yorkshire" {
		return "It's cold and wet."
	}
	return "It's warm and sunny."
}
