package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/bizlens-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/bizlens-cli/internal/config"
	"github.com/KaramelBytes/bizlens-cli/internal/render"
	"github.com/KaramelBytes/bizlens-cli/internal/workspace"
)

type runtimeOptions struct {
	ProviderFlag string
	OllamaHost   string
}

func buildRuntime(cfg *cfgpkg.Global, opts runtimeOptions) (ai.Runtime, string, error) {
	httpTimeout := 60 * time.Second
	retryMax := 3
	baseDelay := 500 * time.Millisecond
	maxDelay := 4 * time.Second
	if cfg != nil {
		if cfg.HTTPTimeoutSec > 0 {
			httpTimeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
		}
		if cfg.RetryMaxAttempts > 0 {
			retryMax = cfg.RetryMaxAttempts
		}
		if cfg.RetryBaseDelayMs > 0 {
			baseDelay = time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond
		}
		if cfg.RetryMaxDelayMs > 0 {
			maxDelay = time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond
		}
	}

	providerName := strings.ToLower(strings.TrimSpace(opts.ProviderFlag))
	if providerName == "" && cfg != nil && cfg.DefaultProvider != "" {
		providerName = strings.ToLower(cfg.DefaultProvider)
	}
	if providerName == "" {
		providerName = ai.ProviderGroq
	}
	if providerName == ai.ProviderLocal {
		providerName = ai.ProviderOllama
	}

	apiKey := os.Getenv("BIZLENS_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	if apiKey == "" && cfg != nil && cfg.APIKey != "" {
		apiKey = cfg.APIKey
	}

	rc := ai.RuntimeConfig{
		HTTPTimeout: httpTimeout,
		RetryMax:    retryMax,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
		APIKey:      apiKey,
	}

	if providerName == ai.ProviderOllama {
		host := strings.TrimSpace(opts.OllamaHost)
		if host == "" {
			if v := os.Getenv("BIZLENS_OLLAMA_HOST"); v != "" {
				host = v
			}
		}
		if host == "" && cfg != nil && cfg.OllamaHost != "" {
			host = cfg.OllamaHost
		}
		if host == "" {
			host = "http://127.0.0.1:11434"
		}
		rc.Host = host
		if v := os.Getenv("BIZLENS_OLLAMA_TIMEOUT_SEC"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				rc.HTTPTimeout = time.Duration(n) * time.Second
			}
		}
		if cfg != nil && cfg.OllamaTimeoutSec > 0 {
			rc.HTTPTimeout = time.Duration(cfg.OllamaTimeoutSec) * time.Second
		}
	}

	client, ok := ai.GetRuntime(providerName, rc)
	if !ok {
		return nil, providerName, fmt.Errorf("provider not supported: %s (use groq|ollama)", providerName)
	}
	return client, providerName, nil
}

func selectModel(ws *workspace.Workspace, cfg *cfgpkg.Global, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if ws != nil && ws.Config != nil && ws.Config.Model != "" {
		return ws.Config.Model
	}
	if cfg != nil && cfg.DefaultModel != "" {
		return cfg.DefaultModel
	}
	return "llama-3.3-70b-versatile"
}

func enforceBudget(estCost, limit float64) error {
	if limit > 0 && estCost > 0 && estCost > limit {
		return fmt.Errorf("✗ Estimated cost ~$%.4f exceeds budget limit ~$%.4f", estCost, limit)
	}
	return nil
}

type streamingOptions struct {
	Enabled     bool
	Quiet       bool
	PrintPrompt bool
	Prompt      string
	Writer      io.Writer
	DeltaWriter io.Writer
}

// handleStreaming streams the response when the runtime supports it,
// echoing deltas as they arrive while collecting the full content so
// the caller can still parse and rank it afterwards.
func handleStreaming(ctx context.Context, runtime ai.Runtime, req ai.GenerateRequest, opts streamingOptions) (bool, string, error) {
	if !opts.Enabled {
		return false, "", nil
	}

	logWriter := opts.Writer
	if logWriter == nil {
		logWriter = os.Stdout
	}
	deltaWriter := opts.DeltaWriter
	if deltaWriter == nil {
		deltaWriter = os.Stdout
	}

	sr, ok := runtime.(ai.StreamRuntime)
	if !ok {
		if !opts.Quiet {
			fmt.Fprintln(logWriter, "⚠ Streaming not supported for this provider; falling back to non-streaming.")
		}
		return false, "", nil
	}

	if opts.PrintPrompt && !opts.Quiet {
		fmt.Fprintln(logWriter, "\n--print-prompt: sending the following prompt --")
		fmt.Fprintln(logWriter, opts.Prompt)
	}
	if !opts.Quiet {
		fmt.Fprintln(logWriter, "(streaming)")
	}

	var content strings.Builder
	if err := sr.GenerateStream(ctx, req, func(delta string) {
		content.WriteString(delta)
		fmt.Fprint(deltaWriter, delta)
	}); err != nil {
		return true, "", fmt.Errorf("streaming generation failed: %w", err)
	}

	if !opts.Quiet {
		fmt.Fprintln(logWriter)
	}
	return true, content.String(), nil
}

type outputOptions struct {
	Format     render.Format
	OutputPath string
	Quiet      bool
	// SkipStdout suppresses the stdout copy (set after streaming, which
	// already showed the raw response).
	SkipStdout bool
	Writer     io.Writer
}

// writeDocument renders the document and delivers it to stdout and/or
// the requested output file.
func writeDocument(doc *render.Document, opts outputOptions) error {
	out, err := doc.Render(opts.Format)
	if err != nil {
		return err
	}
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	if !opts.SkipStdout {
		if !opts.Quiet {
			fmt.Fprintln(w, "\n=== Insights ===")
		}
		w.Write(out)
		if len(out) > 0 && out[len(out)-1] != '\n' {
			fmt.Fprintln(w)
		}
	}
	if opts.OutputPath == "" {
		return nil
	}
	path := opts.OutputPath
	if filepath.Ext(path) == "" {
		path += opts.Format.Ext()
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if !opts.Quiet {
		fmt.Fprintf(w, "\n💾 Saved output to %s\n", path)
	}
	return nil
}
