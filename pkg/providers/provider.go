package providers

import "context"

// Generator produces the next assistant message for a conversation.
// It is the only capability the chat assistant and the icebreaker
// enricher need from a model backend.
//
// Implementations make exactly one upstream call per Generate and do not
// retry; callers decide how to degrade. They must respect ctx cancellation.
//
// Example usage:
//
//	gen, err := providerfactory.NewGenerator(cfg)
//	if err != nil {
//	    return err
//	}
//
//	resp, err := gen.Generate(ctx, &providers.ChatRequest{
//	    Messages: []providers.Message{
//	        {Role: providers.RoleSystem, Content: prompt},
//	        {Role: providers.RoleUser, Content: "Hello!"},
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.Content)
type Generator interface {
	// Generate sends the conversation and returns the model's reply.
	// An empty reply is reported as an error of type *EmptyResponseError.
	Generate(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Name returns the configured provider label (e.g. "deepseek").
	Name() string

	// Health returns request counters and the consecutive failure streak.
	Health() Health
}
