package agent

import (
	"context"
	"fmt"

	"github.com/etnz/apotek/logger"
	"google.golang.org/genai"
)

// Expert represent a chat with a business expert.
type Expert struct {
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	ModelName   string                       `json:"model_name"`
	Config      *genai.GenerateContentConfig `json:"config"`
	Library     Library
	chat        *genai.Chat
}

func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, e.ModelName, e.Config, nil)
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", e.Name, err)
	}
	e.chat = chat
	return nil
}

// Ask sends parts to the expert and answers its function calls until it
// replies with text.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (*genai.Content, error) {
	resp, err := e.chat.Send(ctx, parts...)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from expert %s", e.Name)
	}
	content := resp.Candidates[0].Content

	var responses []*genai.Part
	for _, part := range content.Parts {
		if part.FunctionCall == nil {
			continue
		}
		if e.Library == nil {
			return nil, fmt.Errorf("expert %s doesn't know how to make function calls", e.Name)
		}
		log := logger.FromContext(ctx)
		log.Debug().Str("expert", e.Name).Str("function", part.FunctionCall.Name).Interface("args", part.FunctionCall.Args).Msg("function call")
		responses = append(responses, &genai.Part{FunctionResponse: e.Library(ctx, part.FunctionCall)})
	}
	if len(responses) > 0 {
		return e.Ask(ctx, responses...)
	}
	return content, nil
}

// Declaration returns the function declaration to ask this expert.
func (e *Expert) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        e.Name,
		Description: e.Description,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question": {
					Type:        genai.TypeString,
					Description: "The question to ask the expert.",
				},
			},
			Required: []string{"question"},
		},
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "Expert's reponse.",
		},
	}
}

// Call perform the call of asking this expert.
func (e *Expert) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	question, ok := args["question"].(string)
	if !ok {
		return errorResponse(id, e.Name, fmt.Errorf("invalid question type got %T, expected string", args["question"]))
	}

	response, err := e.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		return errorResponse(id, e.Name, fmt.Errorf("something went wrong while calling the expert: %w", err))
	}

	r := text(response)
	log := logger.FromContext(ctx)
	log.Debug().Str("expert", e.Name).Str("question", question).Str("answer", r).Msg("expert answered")
	return &genai.FunctionResponse{
		ID:       id,
		Name:     e.Name,
		Response: map[string]any{"output": r},
	}
}

// text concatenates the text parts of c.
func text(c *genai.Content) string {
	var s string
	for _, p := range c.Parts {
		s += p.Text
	}
	return s
}
