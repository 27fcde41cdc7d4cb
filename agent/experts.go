package agent

import (
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation with a pharmacy analyst
			reviewing the cleaning of the pharmacy's purchase ledger.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The analyst wants to understand why transactions were flagged as outliers, why some of them
			were removed as data-entry errors while others were kept as legitimate bulk purchases,
			and what drives the stock level model.

			Devise a plan of questions to ask to each experts and come up with the best reponse to the analyst's request.
			Answer in markdown, quote product codes and transaction numbers as they appear in the data.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewPharmacist returns the expert on drugs, their packaging and their prices.
func NewPharmacist() *Expert {
	return &Expert{
		Name: "Pharmacist",
		Description: `This is an expert pharmacist, familiar with Indonesian pharmacies.
		He knows drugs, the units they are sold in (BTL, STRIP, BOX, TUBE...) and their usual prices in Rupiah.
		Ask the Pharmacist whether a unit or a unit price is plausible for a product.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a pharmacist working in Indonesia. You can search about drugs, their packaging
			and their retail and wholesale prices. You Leverage Google Search to
			ground your assertions in a solid truth.
			When asked about a price, say whether it is plausible for the unit it is expressed in.
				`}}},
		},
	}
}
