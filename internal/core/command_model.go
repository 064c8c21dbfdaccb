package core

import (
	"fmt"
	"strings"
)

// StockCommand is the AI-generated interpretation of a natural-language stock
// instruction. It is a proposal only: nothing is executed until the caller
// confirms and invokes the matching service operation.
type StockCommand struct {
	Action        string  `json:"action" jsonschema:"enum=transfer,enum=split,enum=query" jsonschema_description:"The operation the user asked for: 'transfer' moves stock between two locations, 'split' moves stock into a (possibly new) container, 'query' asks about current stock"`
	ItemName      string  `json:"item_name" jsonschema_description:"The exact item name from the provided item list"`
	FromLocation  string  `json:"from_location" jsonschema_description:"The exact source location name from the provided location list. Empty for 'query'."`
	ToLocation    string  `json:"to_location" jsonschema_description:"The exact destination location name from the provided location list. Empty for 'split' with a new container and for 'query'."`
	ContainerName string  `json:"container_name" jsonschema_description:"For 'split' with a new container: the name the user gave the container. Empty otherwise."`
	Quantity      int     `json:"quantity" jsonschema_description:"The whole number of units to move. 0 for 'query'."`
	Confidence    float64 `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
	Reasoning     string  `json:"reasoning" jsonschema_description:"Explanation for the proposed command"`
}

// CommandClarification is returned by the AI when the instruction is
// ambiguous or missing critical information.
type CommandClarification struct {
	Message string `json:"message" jsonschema_description:"A message asking the user for the missing details (e.g. 'Which location should the screws come from?')"`
}

// CommandResponse wraps the AI output to handle branching between a valid
// StockCommand and a clarification request. The AI must return exactly one.
type CommandResponse struct {
	IsClarificationRequest bool                  `json:"is_clarification_request" jsonschema_description:"Set to true ONLY if you lack enough information to produce a confident command"`
	Clarification          *CommandClarification `json:"clarification,omitempty" jsonschema_description:"Required if is_clarification_request is true"`
	Command                *StockCommand         `json:"command,omitempty" jsonschema_description:"Required if is_clarification_request is false"`
}

// Normalize trims surrounding whitespace from all name fields.
func (c *StockCommand) Normalize() {
	c.Action = strings.TrimSpace(strings.ToLower(c.Action))
	c.ItemName = strings.TrimSpace(c.ItemName)
	c.FromLocation = strings.TrimSpace(c.FromLocation)
	c.ToLocation = strings.TrimSpace(c.ToLocation)
	c.ContainerName = strings.TrimSpace(c.ContainerName)
}

// Validate checks structural soundness of the proposed command.
func (c *StockCommand) Validate() error {
	if c.ItemName == "" {
		return fmt.Errorf("command has no item name")
	}
	switch c.Action {
	case "transfer":
		if c.FromLocation == "" || c.ToLocation == "" {
			return fmt.Errorf("transfer command needs both source and destination locations")
		}
		if c.Quantity <= 0 {
			return fmt.Errorf("transfer command needs a positive quantity, got %d", c.Quantity)
		}
	case "split":
		if c.FromLocation == "" {
			return fmt.Errorf("split command needs a source location")
		}
		if c.ToLocation == "" && c.ContainerName == "" {
			return fmt.Errorf("split command needs an existing container or a new container name")
		}
		if c.Quantity <= 0 {
			return fmt.Errorf("split command needs a positive quantity, got %d", c.Quantity)
		}
	case "query":
		// Item name alone is enough.
	default:
		return fmt.Errorf("unknown command action %q", c.Action)
	}
	return nil
}
