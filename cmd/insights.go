package cmd

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/bizlens-cli/internal/ai"
	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
	"github.com/KaramelBytes/bizlens-cli/internal/insight"
	"github.com/KaramelBytes/bizlens-cli/internal/render"
	"github.com/KaramelBytes/bizlens-cli/internal/utils"
	"github.com/KaramelBytes/bizlens-cli/internal/workspace"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// defaultObjective is used when neither the workspace nor --objective
// provides one.
const defaultObjective = "Identify the key factors driving the patterns in these datasets and estimate each factor's relative business impact."

var (
	insWorkspace   string
	insFiles       []string
	insObjective   string
	insModel       string
	insModelPreset string
	insProvider    string
	insMaxTokens   int
	insTemp        float64
	insThreshold   float64
	insDryRun      bool
	insQuiet       bool
	insPrintPrompt bool
	insPromptLimit int
	insBudgetLimit float64
	insOutputPath  string
	insFormat      string
	insStream      bool
	insOllamaHost  string
	insTimeoutSec  int
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Ask an AI model to interpret workspace datasets and rank impact factors",
	Example: `  bizlens insights -w q3-review --dry-run
  bizlens insights -w q3-review --model llama-3.3-70b-versatile --format html --output report.html
  bizlens insights --file sales.csv --objective "Why did revenue dip in June?"
  bizlens insights -w q3-review --budget-limit 0.05 --prompt-limit 60000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Ensure flags that can carry over between invocations are reset to defaults
		// unless explicitly provided in THIS run. Use Visit to detect set flags in this parse.
		if f := cmd.Flags(); f != nil {
			provided := map[string]bool{}
			f.Visit(func(fl *pflag.Flag) {
				provided[fl.Name] = true
			})
			if !provided["budget-limit"] {
				insBudgetLimit = 0
			}
			if !provided["prompt-limit"] {
				insPromptLimit = 0
			}
			if !provided["print-prompt"] {
				insPrintPrompt = false
			}
			if !provided["provider"] {
				insProvider = ""
			}
			if !provided["model"] {
				insModel = ""
			}
			if !provided["max-tokens"] {
				insMaxTokens = 0
			}
			if !provided["timeout-sec"] {
				insTimeoutSec = 180
			}
			if !provided["dry-run"] {
				insDryRun = false
			}
			if !provided["file"] {
				insFiles = nil
			}
			if !provided["objective"] {
				insObjective = ""
			}
			if !provided["threshold"] {
				insThreshold = 0
			}
		}

		if cmd.Flags().Changed("threshold") && (insThreshold <= 0 || insThreshold > 100) {
			return fmt.Errorf("threshold must be in (0, 100], got %v", insThreshold)
		}
		format, err := render.ParseFormat(insFormat)
		if err != nil {
			return err
		}

		var ws *workspace.Workspace
		switch {
		case insWorkspace != "" && len(insFiles) > 0:
			return fmt.Errorf("use either --workspace or --file, not both")
		case insWorkspace != "":
			wsDir, err := resolveWorkspaceDirByName(insWorkspace)
			if err != nil {
				return err
			}
			ws, err = workspace.Load(wsDir)
			if err != nil {
				return err
			}
		case len(insFiles) > 0:
			// One-off run: build an in-memory workspace that is never saved.
			ws = workspace.New("ad-hoc", "one-off analysis", "")
			opt := dataset.DefaultOptions()
			if cfg != nil && cfg.SampleRows > 0 {
				opt.SampleRows = cfg.SampleRows
			}
			for _, f := range insFiles {
				if err := ws.AddDataset(f, "", opt); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("--workspace or --file is required")
		}
		if insObjective != "" {
			ws.SetObjective(insObjective)
		}
		if ws.Objective == "" {
			ws.SetObjective(defaultObjective)
		}

		// Apply provider preset via explicit --provider (offline, no network)
		providerUsed := ""
		if insProvider != "" {
			if preset, ok := ai.PresetCatalog(insProvider); ok {
				ai.MergeCatalog(preset)
				providerUsed = insProvider
				if !insQuiet {
					fmt.Printf("Using built-in provider preset: %s (merged into catalog)\n", insProvider)
				}
			} else {
				return fmt.Errorf("unknown --provider: %s (use groq|ollama)", insProvider)
			}
		}

		// Apply provider and/or tier presets via --model-preset if requested (offline, no network)
		if insModelPreset != "" {
			provider := insModelPreset
			tier := ""
			if strings.Contains(insModelPreset, ":") {
				parts := strings.SplitN(insModelPreset, ":", 2)
				provider, tier = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
			} else {
				// If value matches a known tier, keep provider empty to use defaults
				switch insModelPreset {
				case "cheap", "balanced", "high-context":
					provider = ""
					tier = insModelPreset
				}
			}
			if provider != "" {
				if preset, ok := ai.PresetCatalog(provider); ok {
					ai.MergeCatalog(preset)
					providerUsed = provider
					if !insQuiet {
						fmt.Printf("Using built-in provider preset: %s (merged into catalog)\n", provider)
					}
				} else if tier == "" { // only error if neither provider nor tier recognized
					return fmt.Errorf("unknown --model-preset: %s (use groq|ollama or :cheap|:balanced|:high-context)", insModelPreset)
				}
			}
			if tier != "" && insModel == "" {
				// Prefer explicitly set --provider if any
				prov := providerUsed
				if prov == "" && insProvider != "" {
					prov = insProvider
				}
				if name, ok := ai.RecommendModel(prov, tier); ok {
					insModel = name
					if prov == "" {
						prov = "default"
					}
					if !insQuiet {
						fmt.Printf("Selected model by tier preset (%s:%s): %s\n", prov, tier, name)
					}
				} else {
					return fmt.Errorf("unknown tier in --model-preset: %s (use cheap|balanced|high-context)", tier)
				}
			}
		}

		prompt, tokens, err := insight.BuildPrompt(ws)
		if err != nil {
			return err
		}

		// Optional prompt cap/truncation before proceeding
		if insPromptLimit > 0 && tokens > insPromptLimit {
			if !insQuiet {
				fmt.Printf("⚠ Prompt exceeds limit (%d > %d). Truncating before send...\n", tokens, insPromptLimit)
			}
			prompt = utils.TruncateToTokenLimit(prompt, insPromptLimit)
			tokens = utils.CountTokens(prompt)
		}

		model := selectModel(ws, cfg, insModel)

		maxTokens := insMaxTokens
		if maxTokens == 0 && ws.Config != nil && ws.Config.MaxTokens > 0 {
			maxTokens = ws.Config.MaxTokens
		}
		if maxTokens == 0 && cfg != nil && cfg.MaxTokens > 0 {
			maxTokens = cfg.MaxTokens
		}
		if maxTokens == 0 {
			maxTokens = 1024
		}

		temp := insTemp
		if temp == 0 && ws.Config != nil && ws.Config.Temperature > 0 {
			temp = ws.Config.Temperature
		}
		if temp == 0 && cfg != nil && cfg.Temperature > 0 {
			temp = cfg.Temperature
		}
		if temp == 0 {
			temp = 0.2
		}

		// Token breakdown
		dataTokens := 0
		for _, d := range ws.Datasets {
			dataTokens += d.Tokens
		}
		noteTokens := 0
		for _, n := range ws.Notes {
			noteTokens += n.Tokens
		}
		objTokens := utils.CountTokens(ws.Objective)
		overhead := tokens - (dataTokens + noteTokens + objTokens)
		if overhead < 0 {
			overhead = 0
		}

		if !insQuiet {
			ids := make([]string, 0, len(ws.Datasets))
			for id := range ws.Datasets {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			parts := make([]string, 0, len(ids))
			for _, id := range ids {
				d := ws.Datasets[id]
				parts = append(parts, fmt.Sprintf("%s (%d×%d)", d.Name, d.Rows, d.Columns))
			}
			fmt.Printf("Datasets: %s\n", strings.Join(parts, ", "))
			fmt.Printf("Tokens: total≈%d (objective≈%d, datasets≈%d, notes≈%d, overhead≈%d)\n", tokens, objTokens, dataTokens, noteTokens, overhead)
		}

		// Model metadata and pricing warnings
		var estCost float64
		if mi, ok := ai.LookupModel(model); ok {
			if debug {
				fmt.Printf("DEBUG: Model: %s, ContextTokens: %d, tokens: %d, maxTokens: %d\n", mi.Name, mi.ContextTokens, tokens, maxTokens)
			}
			if !insDryRun && (tokens+maxTokens > mi.ContextTokens) {
				if !insQuiet {
					fmt.Printf("⚠ Prompt (%d tokens) + max-tokens (%d) exceeds %s context window (~%d tokens).\n",
						tokens, maxTokens, mi.Name, mi.ContextTokens)
				}
				_, providerName, err := buildRuntime(cfg, runtimeOptions{
					ProviderFlag: insProvider,
					OllamaHost:   insOllamaHost,
				})
				if err != nil {
					return err
				}
				if providerName == ai.ProviderOllama {
					availableForPrompt := mi.ContextTokens - maxTokens
					if availableForPrompt < 0 {
						availableForPrompt = mi.ContextTokens / 2 // Conservative
					}
					return fmt.Errorf("context window exceeded for local model '%s'.\n"+
						"  Required: %d tokens (prompt) + %d (max-tokens) = %d total\n"+
						"  Available: %d tokens\n\n"+
						"Solutions:\n"+
						"  1. Use --prompt-limit %d to truncate the prompt\n"+
						"  2. Re-add datasets with --sample-rows 0 to shrink their summaries\n"+
						"  3. Remove datasets from the workspace or reduce --max-rows\n"+
						"  4. Use a model with a larger context window",
						model, tokens, maxTokens, tokens+maxTokens, mi.ContextTokens,
						availableForPrompt)
				}
			}
			if cost, ok := ai.EstimateCostUSD(model, tokens, maxTokens); ok {
				estCost = cost
				if !insQuiet {
					fmt.Printf("Estimated max cost: ~$%.4f (in %.4f/out %.4f per 1K tokens)\n", cost, mi.InputPerK, mi.OutputPerK)
				}
			}
		}

		if err := enforceBudget(estCost, insBudgetLimit); err != nil {
			return err
		}

		if insDryRun {
			if !insQuiet {
				// Deterministic dry-run request id for observability
				sum := sha1.Sum([]byte(prompt))
				rid := fmt.Sprintf("sim_%x", sum[:6])
				fmt.Println("\n--dry-run: no API call will be made. Prompt preview below --")
				fmt.Printf("Request ID (dry-run): %s\n", rid)
			}
			fmt.Println(prompt)
			return nil
		}

		if insPrintPrompt && !insQuiet && !insStream {
			fmt.Println("\n--print-prompt: sending the following prompt --")
			fmt.Println(prompt)
		}

		client, providerName, err := buildRuntime(cfg, runtimeOptions{
			ProviderFlag: insProvider,
			OllamaHost:   insOllamaHost,
		})
		if err != nil {
			return err
		}

		// Request timeout
		timeoutSec := insTimeoutSec
		if timeoutSec <= 0 {
			timeoutSec = 180
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
		defer cancel()

		req := ai.GenerateRequest{
			Model: model,
			Messages: []ai.Message{
				{Role: "user", Content: prompt},
			},
			MaxTokens:   maxTokens,
			Temperature: temp,
		}

		// Basic warning if prompt is very large relative to typical limits
		if tokens > 100000 && !insQuiet {
			fmt.Printf("⚠ Warning: very large prompt (≈%d tokens). Consider fewer datasets or --sample-rows 0.\n", tokens)
		}
		if insMaxTokens > 0 && (tokens+insMaxTokens) > 120000 && !insQuiet {
			fmt.Printf("⚠ Warning: prompt + max-tokens (≈%d) may exceed common model context windows.\n", tokens+insMaxTokens)
		}

		if !insQuiet {
			fmt.Printf("⚙ Generating with model=%s (prompt tokens≈%d) ...\n", model, tokens)
		}

		handled, content, err := handleStreaming(ctx, client, req, streamingOptions{
			Enabled:     insStream,
			Quiet:       insQuiet,
			PrintPrompt: insPrintPrompt,
			Prompt:      prompt,
			Writer:      os.Stdout,
			DeltaWriter: os.Stdout,
		})
		if err != nil {
			return err
		}
		requestID := ""
		if !handled {
			resp, err := client.Generate(ctx, req)
			if err != nil {
				return explainGenerateError(err, providerName, model, tokens)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("no content returned from model")
			}
			if resp.RequestID != "" {
				requestID = resp.RequestID
				if !insQuiet {
					fmt.Printf("Request ID: %s\n", requestID)
				}
			}
			content = resp.Choices[0].Message.Content
		}

		rep, err := insight.Parse(content)
		if err != nil {
			// Show the raw response so a failed parse doesn't eat the run.
			if !handled {
				fmt.Println("\n=== Raw response ===")
				fmt.Println(content)
			}
			return fmt.Errorf("interpret model response: %w", err)
		}
		if !insQuiet {
			for _, note := range rep.ParseNotes {
				fmt.Printf("⚠ %s\n", note)
			}
		}
		threshold := insThreshold
		if threshold == 0 && cfg != nil {
			threshold = cfg.ParetoThreshold
		}
		rep.Rank(threshold)

		doc := render.NewDocument("Insights: " + ws.Name)
		doc.Insights = rep
		doc.Meta = &render.Meta{
			Model:        model,
			Provider:     providerName,
			PromptTokens: tokens,
			RequestID:    requestID,
		}
		return writeDocument(doc, outputOptions{
			Format:     format,
			OutputPath: insOutputPath,
			Quiet:      insQuiet,
			SkipStdout: handled,
			Writer:     os.Stdout,
		})
	},
}

// explainGenerateError maps provider errors to actionable hints.
func explainGenerateError(err error, providerName, model string, tokens int) error {
	var (
		authErr *ai.AuthError
		rlErr   *ai.RateLimitError
		nfErr   *ai.ModelNotFoundError
		brErr   *ai.BadRequestError
		qErr    *ai.QuotaExceededError
		sErr    *ai.ServerError
		unreach *ai.UnreachableError
	)
	switch {
	case errors.As(err, &unreach):
		if providerName == ai.ProviderOllama {
			return fmt.Errorf("Ollama not reachable at %s. Ensure Ollama is running (see https://ollama.com) and host is correct. You can set BIZLENS_OLLAMA_HOST or config 'ollama_host'. Detail: %w", unreach.Host, err)
		}
		return fmt.Errorf("endpoint unreachable. Check your network and provider settings: %w", err)
	case errors.As(err, &authErr):
		return fmt.Errorf("authentication failed: set GROQ_API_KEY (or BIZLENS_API_KEY) or add api_key in config (~/.bizlens/config.yaml): %w", err)
	case errors.As(err, &rlErr):
		if rlErr.RetryAfter > 0 {
			return fmt.Errorf("rate limited, try again in ~%ds: %w", int(rlErr.RetryAfter.Seconds()), err)
		}
		return fmt.Errorf("rate limited by provider, please retry: %w", err)
	case errors.As(err, &nfErr):
		if providerName == ai.ProviderOllama {
			return fmt.Errorf("local model not available (%s). Install it with 'ollama pull %s' or choose another model. %w", model, model, err)
		}
		return fmt.Errorf("model not found (%s). Verify the model name or check 'bizlens models show': %w", model, err)
	case errors.As(err, &brErr):
		if tokens > 50000 {
			return fmt.Errorf("request invalid: prompt is very large (%d tokens).\n"+
				"  Try --prompt-limit, or re-add datasets with --sample-rows 0", tokens)
		}
		return fmt.Errorf("request invalid. Try reducing prompt size or max-tokens: %w", err)
	case errors.As(err, &qErr):
		return fmt.Errorf("quota/billing issue. Check your provider account: %w", err)
	case errors.As(err, &sErr):
		return fmt.Errorf("provider appears unavailable (server error). Please retry later: %w", err)
	default:
		return fmt.Errorf("generation failed: %w", err)
	}
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsCmd.Flags().StringVarP(&insWorkspace, "workspace", "w", "", "workspace name")
	insightsCmd.Flags().StringSliceVar(&insFiles, "file", nil, "data file(s) for a one-off run without a workspace (repeatable)")
	insightsCmd.Flags().StringVar(&insObjective, "objective", "", "analysis objective for this run")
	insightsCmd.Flags().StringVar(&insModel, "model", "", "override model (default from workspace config)")
	insightsCmd.Flags().StringVar(&insModelPreset, "model-preset", "", "apply preset: provider catalog (groq|ollama) or tier (cheap|balanced|high-context) or <provider>:<tier>")
	insightsCmd.Flags().StringVar(&insProvider, "provider", "", "explicit provider (groq|ollama)")
	insightsCmd.Flags().IntVar(&insMaxTokens, "max-tokens", 0, "max tokens for response")
	insightsCmd.Flags().Float64Var(&insTemp, "temp", 0, "sampling temperature")
	insightsCmd.Flags().Float64VarP(&insThreshold, "threshold", "t", 0, "cumulative-percentage cutoff for High priority (default from config, 80)")
	insightsCmd.Flags().BoolVar(&insDryRun, "dry-run", false, "build prompt and print token breakdown without calling the API")
	insightsCmd.Flags().BoolVar(&insPrintPrompt, "print-prompt", false, "print the prompt being sent to the API")
	insightsCmd.Flags().IntVar(&insPromptLimit, "prompt-limit", 0, "truncate built prompt to this many tokens before sending")
	insightsCmd.Flags().Float64Var(&insBudgetLimit, "budget-limit", 0, "fail if estimated max cost (USD) exceeds this budget")
	insightsCmd.Flags().StringVarP(&insOutputPath, "output", "o", "", "optional path to write the rendered report")
	insightsCmd.Flags().StringVarP(&insFormat, "format", "f", "markdown", "output format: markdown | json | html")
	insightsCmd.Flags().BoolVar(&insQuiet, "quiet", false, "suppress non-essential output")
	insightsCmd.Flags().BoolVar(&insStream, "stream", false, "stream the raw response if supported by the provider")
	insightsCmd.Flags().StringVar(&insOllamaHost, "ollama-host", "", "override Ollama host (e.g., http://127.0.0.1:11434)")
	insightsCmd.Flags().IntVar(&insTimeoutSec, "timeout-sec", 180, "request timeout in seconds (default 180)")
}
