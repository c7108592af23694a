package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"shellfish-ops/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// OrderInterpreter turns a free-text order (an email, a phone note) into a draft order.
type OrderInterpreter interface {
	InterpretOrder(ctx context.Context, req InterpretRequest) (*OrderDraft, error)
}

// InterpretRequest carries the message plus the catalog and customer list the
// model is allowed to pick from.
type InterpretRequest struct {
	Text      string
	Today     time.Time
	Products  []core.Product
	Customers []core.CustomerSummary
}

// DraftLine is one product line proposed by the model.
type DraftLine struct {
	ProductID int `json:"product_id" jsonschema:"description=id of a product from the catalog"`
	Quantity  int `json:"quantity" jsonschema:"description=number of units ordered, at least 1"`
}

// OrderDraft is the model's reading of an order message. When the message is
// ambiguous the model sets IsClarification and asks a question instead.
type OrderDraft struct {
	IsClarification      bool        `json:"is_clarification" jsonschema:"description=true when the message cannot be turned into an order without more information"`
	ClarificationMessage string      `json:"clarification_message" jsonschema:"description=question to ask the user when is_clarification is true, otherwise empty"`
	CustomerID           int         `json:"customer_id" jsonschema:"description=id of the ordering customer from the customer list, 0 when unknown"`
	DeliveryDate         string      `json:"delivery_date" jsonschema:"description=requested delivery date as YYYY-MM-DD"`
	Items                []DraftLine `json:"items"`
	Notes                string      `json:"notes" jsonschema:"description=any special instructions from the message"`
	Confidence           float64     `json:"confidence" jsonschema:"description=confidence in the interpretation between 0.0 and 1.0"`
	Reasoning            string      `json:"reasoning"`
}

// Validate checks the draft against the catalog and customer list it was built from.
func (d *OrderDraft) Validate(req InterpretRequest) error {
	if d.IsClarification {
		if strings.TrimSpace(d.ClarificationMessage) == "" {
			return fmt.Errorf("clarification requested without a message")
		}
		return nil
	}

	customerOK := false
	for _, c := range req.Customers {
		if c.ID == d.CustomerID {
			customerOK = true
			break
		}
	}
	if !customerOK {
		return fmt.Errorf("unknown customer id %d", d.CustomerID)
	}

	if _, err := core.ParseDate(d.DeliveryDate); err != nil {
		return fmt.Errorf("invalid delivery date %q", d.DeliveryDate)
	}

	if len(d.Items) == 0 {
		return fmt.Errorf("draft has no items")
	}
	active := make(map[int]bool, len(req.Products))
	for _, p := range req.Products {
		active[p.ID] = p.IsActive
	}
	for i, it := range d.Items {
		if !active[it.ProductID] {
			return fmt.Errorf("item %d: unknown or inactive product id %d", i+1, it.ProductID)
		}
		if it.Quantity < 1 {
			return fmt.Errorf("item %d: quantity must be at least 1", i+1)
		}
	}
	return nil
}

type Agent struct {
	client *openai.Client
	model  string
}

func NewAgent(apiKey, model string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	if model == "" {
		model = string(shared.ChatModelGPT4oMini)
	}
	return &Agent{client: &client, model: model}
}

// BuildPrompt renders the instructions, reference lists and message for the model.
func BuildPrompt(req InterpretRequest) string {
	var catalog strings.Builder
	for _, p := range req.Products {
		if !p.IsActive {
			continue
		}
		fmt.Fprintf(&catalog, "%d | %s | per %s | base %s\n", p.ID, p.Name, p.Unit, p.BasePrice.StringFixed(2))
	}
	var customers strings.Builder
	for _, c := range req.Customers {
		fmt.Fprintf(&customers, "%d | %s\n", c.ID, c.BusinessName)
	}

	return fmt.Sprintf(`You take wholesale oyster orders for a shellfish farm.
Read the message below and produce an order draft.
Rules:
1. Use ONLY customer ids and product ids from the lists below.
2. Quantities are counts of the product's unit (oysters unless stated otherwise). "5 dozen" of a per-oyster product is 60.
3. Resolve relative dates ("tomorrow", "Friday") against today's date, %s (%s). Use YYYY-MM-DD.
4. If the customer, the products or the delivery date cannot be determined, set is_clarification to true and ask one short question.
5. Do not invent prices; pricing is applied later.

Customers (id | business name):
%s
Products (id | name | unit | base price):
%s
Message:
%s`, req.Today.Format("2006-01-02"), req.Today.Weekday(), customers.String(), catalog.String(), req.Text)
}

func (a *Agent) InterpretOrder(ctx context.Context, req InterpretRequest) (*OrderDraft, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, core.Validationf("order text is required")
	}

	schemaJSON, err := json.Marshal(generateSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(a.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(BuildPrompt(req)),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "order_draft",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A draft wholesale oyster order or a clarification question"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, core.Unavailable(err, "order interpreter unavailable")
	}
	return ParseDraft(resp.OutputText(), req)
}

// ParseDraft decodes and validates the model output.
func ParseDraft(content string, req InterpretRequest) (*OrderDraft, error) {
	if content == "" {
		return nil, core.Unavailable(nil, "order interpreter returned an empty response")
	}
	var draft OrderDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, core.Unavailable(err, "failed to parse order interpretation")
	}
	if err := draft.Validate(req); err != nil {
		return nil, core.Validationf("order interpretation rejected: %v", err)
	}
	return &draft, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v OrderDraft
	return reflector.Reflect(v)
}
