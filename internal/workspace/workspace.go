package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
	"github.com/KaramelBytes/bizlens-cli/internal/utils"
)

const (
	workspaceFileName = "workspace.json"
)

// Workspace represents a BizLens analysis workspace persisted on disk.
// It collects the datasets under analysis, free-form business context
// notes, and the objective the insights should answer.
type Workspace struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Objective   string              `json:"objective"`
	Datasets    map[string]*Dataset `json:"datasets"`
	Notes       map[string]*Note    `json:"notes,omitempty"`
	Config      *WorkspaceConfig    `json:"config"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`

	// Not serialized: on-disk location of the workspace.json
	rootDir string `json:"-"`
}

type WorkspaceConfig struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// New constructs an in-memory workspace. Call Save() to persist.
func New(name, description, rootDir string) *Workspace {
	return &Workspace{
		Name:        name,
		Description: description,
		Datasets:    make(map[string]*Dataset),
		// Leave Config fields empty to inherit from global defaults unless explicitly set per workspace.
		Config:    &WorkspaceConfig{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		rootDir:   rootDir,
	}
}

// Load loads a workspace.json from the provided directory.
func Load(dir string) (*Workspace, error) {
	path := filepath.Join(dir, workspaceFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("workspace not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read workspace: %w", err)
	}
	var w Workspace
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("parse workspace: %w", err)
	}
	w.rootDir = dir
	return &w, nil
}

// RootDir returns the on-disk workspace directory path.
func (w *Workspace) RootDir() string { return w.rootDir }

// Save writes workspace.json using atomic write.
func (w *Workspace) Save() error {
	if w.rootDir == "" {
		return errors.New("workspace root directory not set")
	}
	if err := utils.EnsureDir(w.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	w.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(w)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(w.rootDir, workspaceFileName), data)
}

// AddDataset analyzes a data file and adds its summary to the workspace.
// The rendered summary is cached so prompts never re-read the raw file.
func (w *Workspace) AddDataset(path, description string, opt dataset.Options) error {
	rep, err := dataset.Summarize(path, opt)
	if err != nil {
		return fmt.Errorf("analyze dataset: %w", err)
	}
	_, err = w.AddReport(rep, path, description)
	return err
}

// AddReport attaches an already-computed summary, for callers that
// analyzed the file themselves. When another dataset carries the same
// name the new one gets a numeric suffix so prompt sections stay
// unambiguous.
func (w *Workspace) AddReport(rep *analysis.Report, path, description string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	summary := rep.Markdown()
	id := uuid.NewString()

	d := &Dataset{
		ID:          id,
		Path:        path,
		Name:        w.uniqueName(rep.Name),
		Description: description,
		Summary:     summary,
		Rows:        rep.Overview.Rows,
		Columns:     rep.Overview.Columns,
		Tokens:      utils.CountTokens(summary),
		AddedAt:     info.ModTime(),
	}
	if w.Datasets == nil {
		w.Datasets = make(map[string]*Dataset)
	}
	w.Datasets[id] = d
	w.UpdatedAt = time.Now()
	return d, nil
}

func (w *Workspace) uniqueName(name string) string {
	if !w.nameTaken(name) {
		return name
	}
	for idx := 2; ; idx++ {
		cand := fmt.Sprintf("%s (%d)", name, idx)
		if !w.nameTaken(cand) {
			return cand
		}
	}
}

func (w *Workspace) nameTaken(name string) bool {
	for _, d := range w.Datasets {
		if d.Name == name {
			return true
		}
	}
	return false
}

// IsNoteFile reports whether a path looks like business context rather
// than data; the add command routes on this.
func IsNoteFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		return true
	}
	return false
}

// AddNote reads a context file and caches its normalized text.
func (w *Workspace) AddNote(path, description string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read note: %w", err)
	}
	content := normalizeNote(string(data))
	if content == "" {
		return fmt.Errorf("note %s is empty", filepath.Base(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat note: %w", err)
	}
	n := &Note{
		ID:          uuid.NewString(),
		Path:        path,
		Name:        filepath.Base(path),
		Description: description,
		Content:     content,
		Tokens:      utils.CountTokens(content),
		AddedAt:     info.ModTime(),
	}
	if w.Notes == nil {
		w.Notes = make(map[string]*Note)
	}
	w.Notes[n.ID] = n
	w.UpdatedAt = time.Now()
	return nil
}

// normalizeNote squares away line endings and collapses runs of blank
// lines so cached notes stay prompt-friendly.
func normalizeNote(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(text)
}

func (w *Workspace) SetObjective(objective string) {
	w.Objective = strings.TrimSpace(objective)
	w.UpdatedAt = time.Now()
}

// BuildPrompt assembles the analysis prompt and returns the text with total token estimate.
func (w *Workspace) BuildPrompt() (string, int, error) {
	if w == nil {
		return "", 0, errors.New("workspace is nil")
	}
	if len(w.Datasets) == 0 {
		return "", 0, errors.New("no datasets added to workspace")
	}

	var sb strings.Builder
	sb.WriteString("[ANALYSIS OBJECTIVE]\n")
	sb.WriteString(w.Objective)
	sb.WriteString("\n\n")
	sb.WriteString("[BUSINESS CONTEXT]\n")
	if len(w.Notes) == 0 {
		sb.WriteString("(none)\n")
	} else {
		noteIDs := make([]string, 0, len(w.Notes))
		for id := range w.Notes {
			noteIDs = append(noteIDs, id)
		}
		sort.Strings(noteIDs)
		for _, id := range noteIDs {
			n := w.Notes[id]
			sb.WriteString("\n[NOTE: ")
			sb.WriteString(n.Name)
			sb.WriteString("]")
			if n.Description != "" {
				sb.WriteString(" (")
				sb.WriteString(n.Description)
				sb.WriteString(")")
			}
			sb.WriteString("\n")
			sb.WriteString(n.Content)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")

	// deterministic order for stable prompts
	ids := make([]string, 0, len(w.Datasets))
	for id := range w.Datasets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		d := w.Datasets[id]
		sb.WriteString("[DATASET: ")
		sb.WriteString(d.Name)
		sb.WriteString("]")
		if d.Description != "" {
			sb.WriteString(" (")
			sb.WriteString(d.Description)
			sb.WriteString(")")
		}
		sb.WriteString("\n")
		sb.WriteString(d.Summary)
		sb.WriteString("\n\n")
	}

	// Task reiteration
	sb.WriteString("[TASK]\n")
	sb.WriteString("Based on the dataset summaries above, please: ")
	sb.WriteString(w.Objective)
	sb.WriteString("\n")

	prompt := sb.String()
	tokens := utils.CountTokens(prompt)
	return prompt, tokens, nil
}
