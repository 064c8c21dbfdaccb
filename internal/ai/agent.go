package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"stockroom/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

type AgentService interface {
	InterpretCommand(ctx context.Context, naturalLanguage, itemList, locationList string) (*core.CommandResponse, error)
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// InterpretCommand turns a natural-language stock instruction into a
// structured command proposal, or a clarification request when the input is
// ambiguous. The caller supplies the current item and location names so the
// model maps free-form references onto exact identifiers.
func (a *Agent) InterpretCommand(ctx context.Context, naturalLanguage, itemList, locationList string) (*core.CommandResponse, error) {
	prompt := fmt.Sprintf(`You are the stockroom assistant for a parts and tools inventory.
Your goal is to interpret an instruction about physical stock and propose exactly one structured command.
Rules:
1. Use ONLY item names from the item list and location names from the location list below.
2. 'transfer' moves a quantity between two existing locations.
3. 'split' moves a quantity into a container; if the user names a container that is not in the location list, treat it as a new container and fill container_name.
4. Quantities are whole numbers of physical units.
5. If the item, a required location, or the quantity cannot be determined, return a clarification request instead of guessing.
6. Provide a confidence score (0.0-1.0) and explain your reasoning.

Items:
%s

Locations:
%s

Instruction: %s`, itemList, locationList, naturalLanguage)

	// Dynamically generate the JSON schema from the Go struct.
	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "stock_command",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A structured stock command proposal or a clarification request"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var response core.CommandResponse
	if err := json.Unmarshal([]byte(content), &response); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	if response.IsClarificationRequest {
		if response.Clarification == nil {
			return nil, fmt.Errorf("clarification response missing message")
		}
		return &response, nil
	}

	if response.Command == nil {
		return nil, fmt.Errorf("response carries neither command nor clarification")
	}
	response.Command.Normalize()
	if err := response.Command.Validate(); err != nil {
		return nil, fmt.Errorf("command validation failed: %w", err)
	}

	return &response, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v core.CommandResponse
	return reflector.Reflect(v)
}
