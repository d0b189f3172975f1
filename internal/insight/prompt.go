package insight

import (
	"strings"

	"github.com/KaramelBytes/bizlens-cli/internal/utils"
	"github.com/KaramelBytes/bizlens-cli/internal/workspace"
)

const responseContract = `Respond with a single JSON object and no surrounding prose:
{
  "summary": "two or three sentences describing the overall picture",
  "key_findings": ["finding", "..."],
  "factors": [
    {"factor": "short name", "description": "one sentence", "impact_score": 0}
  ],
  "recommendations": [
    {"title": "action", "description": "one sentence", "expected_impact": "estimate", "timeframe": "e.g. next quarter"}
  ],
  "data_quality_notes": ["caveat", "..."]
}
impact_score is the factor's relative contribution to the objective on a
0-100 scale; scores do not need to sum to 100. List the factors you are
most confident about. If you cannot produce JSON, answer with a markdown
table whose columns are Factor, Description, Impact Score.`

// BuildPrompt wraps the workspace prompt with the structured response contract.
func BuildPrompt(ws *workspace.Workspace) (string, int, error) {
	base, _, err := ws.BuildPrompt()
	if err != nil {
		return "", 0, err
	}
	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("\n[RESPONSE FORMAT]\n")
	sb.WriteString(responseContract)
	sb.WriteString("\n")
	prompt := sb.String()
	return prompt, utils.CountTokens(prompt), nil
}
