// Command test-ai-connection runs a single maintenance classification against
// the configured OpenAI model to verify credentials and response shape.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/propai/maintenance-workflow/internal/ai"
)

func main() {
	apiKey := flag.String("key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
	model := flag.String("model", "gpt-4", "Model to query")
	timeout := flag.Duration("timeout", 30*time.Second, "API call timeout")
	description := flag.String("description", "Water is leaking from under the kitchen sink and pooling on the floor", "Sample issue description")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	_ = gotenv.Load()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *apiKey == "" {
		*apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if *apiKey == "" {
		fmt.Fprintf(os.Stderr, "ERROR: OPENAI_API_KEY not set and no --key flag provided\n")
		fmt.Fprintf(os.Stderr, "Usage: test-ai-connection --key sk-... [--model gpt-4] [--timeout 30s]\n")
		os.Exit(1)
	}

	fmt.Println("=== Maintenance Classifier Connection Test ===")
	fmt.Printf("  Model:       %s\n", *model)
	fmt.Printf("  Timeout:     %v\n", *timeout)
	fmt.Printf("  Description: %s\n", *description)
	fmt.Println()

	client := ai.NewOpenAIClient(*apiKey, *model, 0.3, 1000, *timeout, logger)
	classifier := ai.NewClassifier(client, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	analysis := classifier.Classify(ctx, *description, "", "")
	elapsed := time.Since(start)

	out, _ := json.MarshalIndent(analysis, "", "  ")
	fmt.Printf("Result (%v):\n%s\n", elapsed, out)

	if analysis.Degraded {
		fmt.Println("\nWARNING: classifier fell back to rule-based analysis; the API call did not succeed.")
		os.Exit(1)
	}
	fmt.Println("\nConnection OK.")
}
