package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/apotek"
	"github.com/etnz/apotek/docs"
	"github.com/etnz/apotek/renderer"
	"google.golang.org/genai"
)

// NewAuditor returns the expert on the run summary s.
func NewAuditor(s *apotek.Summary) *Expert {
	lib := AuditorFunctions(s)

	return &Expert{
		Name: "Auditor",
		Description: `This is the Auditor. He has the results of the latest cleaning run of the purchase ledger:
		the outliers that were flagged, the verdict on each of them (data-entry error or legitimate bulk purchase)
		with the unit prices and units it is based on, and the stock level model trained on the cleaned data.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are an auditor of the pharmacy's purchase ledger cleaning.
				You know how to use the Tools to extract relevant information about the latest run.
				You are part of a team of experts, yours is everything about the run's outliers and model.

				Use the available tools to get information about
				  - the run overview
				  - the outliers and their verdicts
				  - the stock level predictions of a product

				Below is the documentation of how outliers are handled and how the model is trained.

			` + must(docs.GetTopics("outliers", "model"))}}},
		},
		Library: NewLibrary(lib),
	}
}

// AuditorFunctions returns the functions the Auditor can call on s.
func AuditorFunctions(s *apotek.Summary) []Function {
	return []Function{
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Overview",
				Description: `Overview returns the report of the run: inputs, record counts at each step, outliers, model.`,
				Response: &genai.Schema{
					Type:        genai.TypeString,
					Description: "The markdown report of the run.",
				},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				return renderer.RenderReport(s), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Outliers",
				Description: `Outliers lists the flagged transactions with the verdict on each of them.`,
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"code": {
							Type:        genai.TypeString,
							Description: "Only list the outliers of this product code, like A001. All products by default.",
						},
						"verdict": {
							Type:        genai.TypeString,
							Enum:        []string{"error", "bulk"},
							Description: "Only list the data-entry errors, or only the legitimate bulk purchases. Both by default.",
						},
					},
				},
				Response: &genai.Schema{
					Type:        genai.TypeString,
					Description: "A markdown table of the outliers with their unit price, the product's median unit price, their ratio, their unit, the product's usual unit and the verdict.",
				},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				code, err := optionalString(args, "code")
				if err != nil {
					return "", err
				}
				verdict, err := optionalString(args, "verdict")
				if err != nil {
					return "", err
				}
				cls, err := FilterClassifications(s.Classifications, code, verdict)
				if err != nil {
					return "", err
				}
				if len(cls) == 0 {
					return "No matching outlier.", nil
				}
				return renderer.ClassificationsMarkdown(cls), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Product",
				Description: `Product returns the aggregated purchases of a product, its stock, its actual and predicted stock level, and the importance of each feature in the model.`,
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"code": {
							Type:        genai.TypeString,
							Description: "The product code, like A001.",
						},
					},
					Required: []string{"code"},
				},
				Response: &genai.Schema{
					Type:        genai.TypeString,
					Description: "Two markdown tables: the product's predictions and the feature importances.",
				},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				code, err := optionalString(args, "code")
				if err != nil {
					return "", err
				}
				if code == "" {
					return "", fmt.Errorf("argument 'code' is required")
				}
				var preds []apotek.Prediction
				for _, p := range s.Predictions {
					if strings.EqualFold(p.Code, code) {
						preds = append(preds, p)
					}
				}
				if len(preds) == 0 {
					return "", fmt.Errorf("product %q is not part of the stock level model", code)
				}
				return renderer.PredictionsMarkdown(preds) + "\n\n" + renderer.ImportancesMarkdown(s.Importances), nil
			},
		},
	}
}

// FilterClassifications returns the classifications of the product code and
// with the verdict ("error" or "bulk"). Empty filters match everything.
func FilterClassifications(cls []apotek.Classification, code, verdict string) ([]apotek.Classification, error) {
	if verdict != "" && verdict != "error" && verdict != "bulk" {
		return nil, fmt.Errorf("argument 'verdict' must be \"error\" or \"bulk\", got %q", verdict)
	}
	var result []apotek.Classification
	for _, c := range cls {
		if code != "" && !strings.EqualFold(c.Transaction.Code, code) {
			continue
		}
		if (verdict == "error" && !c.IsError) || (verdict == "bulk" && c.IsError) {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func optionalString(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument '%s' is not a string as expected but %T", name, v)
	}
	return strings.TrimSpace(s), nil
}

// must panics on err. It is used for embedded content that can't be missing.
func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
