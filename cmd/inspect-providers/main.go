// Command inspect-providers checks that each model provider can be
// constructed with the credentials visible to this process. It prints one
// line per check and always exits 0.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"chat-gateway/internal/agent"
	"chat-gateway/internal/config"
	"chat-gateway/internal/services"
)

const fallbackRegion = "us-east-1"

func main() {
	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	modelID := os.Getenv("DEFAULT_MODEL_ID")
	if modelID == "" {
		modelID = config.FallbackModelID
	}

	fmt.Println("Checking model providers...")

	checkBedrock(ctx, modelID)
	checkGemini(ctx)
	checkFake(ctx)
}

func checkBedrock(ctx context.Context, modelID string) {
	p, err := services.NewBedrockProvider(ctx, os.Getenv("AWS_REGION"))
	if err != nil {
		fail("bedrock provider", err)
		p, err = services.NewBedrockProvider(ctx, fallbackRegion)
		if err != nil {
			fail("bedrock provider ("+fallbackRegion+")", err)
			return
		}
	}
	ok("bedrock provider (region " + p.Region() + ")")
	checkModel(ctx, p, modelID)
}

func checkGemini(ctx context.Context) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		skip("gemini provider", "GEMINI_API_KEY not set")
		return
	}
	p, err := services.NewGeminiProvider(ctx, key)
	if err != nil {
		fail("gemini provider", err)
		return
	}
	defer p.Close()
	ok("gemini provider")
	checkModel(ctx, p, "gemini-2.0-flash")
}

func checkFake(ctx context.Context) {
	p, err := services.NewFakeProvider(os.Getenv("FAKE_SCRIPT"))
	if err != nil {
		fail("fake provider", err)
		return
	}
	ok("fake provider")
	checkModel(ctx, p, "fake")
}

func checkModel(ctx context.Context, p services.Provider, modelID string) {
	m, err := p.NewModel(ctx, modelID)
	if err != nil {
		fail(p.Name()+" model "+modelID, err)
		return
	}
	a := agent.New(m)
	ok(p.Name() + " agent bound to " + a.Model().ID())
}

func ok(what string) { fmt.Printf("  ✓ %s\n", what) }

func fail(what string, err error) { fmt.Printf("  ✗ %s: %v\n", what, err) }

func skip(what, why string) { fmt.Printf("  - %s skipped: %s\n", what, why) }
