package providers

import (
	"context"
	"math/rand"
	"strings"
)

// ScriptedClient answers every prompt with a few choices picked from a
// seeded stream, so matches run without network access
type ScriptedClient struct {
	rng     *rand.Rand
	choices []string
}

func Scripted(seed int64, choices []string) *ScriptedClient {
	return &ScriptedClient{
		rng:     rand.New(rand.NewSource(seed)),
		choices: choices,
	}
}

func (c *ScriptedClient) Complete(ctx context.Context, model string, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(c.choices) == 0 {
		return "", nil
	}
	n := 1 + c.rng.Intn(3)
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "- " + c.choices[c.rng.Intn(len(c.choices))]
	}
	return strings.Join(lines, "\n"), nil
}
