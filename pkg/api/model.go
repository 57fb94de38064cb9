package api

// Model mirrors an entry of the OpenRouter `GET /models` listing.
type Model struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Created       int64        `json:"created,omitempty"`
	Object        string       `json:"object,omitempty"`
	OwnedBy       string       `json:"owned_by,omitempty"`
	Provider      string       `json:"provider,omitempty"`
	Description   string       `json:"description,omitempty"`
	ContextLength int          `json:"context_length,omitempty"`
	Architecture  Architecture `json:"architecture"`
	Pricing       Pricing      `json:"pricing"`
	TopProvider   TopProvider  `json:"top_provider"`
}

type Architecture struct {
	Modality         string   `json:"modality,omitempty"`
	InputModalities  []string `json:"input_modalities,omitempty"`
	OutputModalities []string `json:"output_modalities,omitempty"`
	Tokenizer        string   `json:"tokenizer,omitempty"`
	InstructType     string   `json:"instruct_type,omitempty"`
}

type Pricing struct {
	Prompt     string `json:"prompt,omitempty"`
	Completion string `json:"completion,omitempty"`
	Image      string `json:"image,omitempty"`
	Request    string `json:"request,omitempty"`
}

type TopProvider struct {
	ContextLength       int  `json:"context_length,omitempty"`
	MaxCompletionTokens int  `json:"max_completion_tokens,omitempty"`
	IsModerated         bool `json:"is_moderated"`
}

// ModelList is the `{"data": [...]}` envelope used by the listing endpoint.
type ModelList struct {
	Object string  `json:"object,omitempty"`
	Data   []Model `json:"data"`
}

// ModelFilter narrows a model listing.
type ModelFilter struct {
	Provider string
	ID       string
	Modality string
}
