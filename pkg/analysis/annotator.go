package analysis

import (
	"net/http"

	"github.com/Code-Monger/InkPilot/pkg/annotate"
	"github.com/Code-Monger/InkPilot/pkg/config"
	"github.com/Code-Monger/InkPilot/pkg/spellcheck"
)

// NewAnnotator builds the configured finding source. The local spell
// checker is returned unless the configuration selects a model.
func NewAnnotator(cfg *config.Config, checker *spellcheck.Checker) annotate.Annotator {
	if cfg.AnnotatorKind() != config.AnnotatorLLM {
		return checker
	}

	retry := annotate.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Model.MaxAttempts
	return annotate.NewLLMAnnotator(
		cfg.Model.Endpoint,
		cfg.Model.APIKey,
		cfg.Model.Name,
		annotate.WithRetryConfig(retry),
		annotate.WithTemperature(cfg.Model.Temperature),
		annotate.WithHTTPClient(&http.Client{Timeout: cfg.Model.Timeout}),
	)
}
