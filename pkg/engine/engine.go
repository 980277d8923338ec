// Package engine orchestrates the six-step skill generation pipeline:
// scope card, degrees of freedom, external canon, contract extraction,
// local overlay, and compilation, followed by the quality gates and
// artifact persistence.
package engine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/jingkaihe/skillforge/pkg/canon"
	"github.com/jingkaihe/skillforge/pkg/compiler"
	"github.com/jingkaihe/skillforge/pkg/freedom"
	"github.com/jingkaihe/skillforge/pkg/logger"
	"github.com/jingkaihe/skillforge/pkg/output"
	"github.com/jingkaihe/skillforge/pkg/overlay"
	"github.com/jingkaihe/skillforge/pkg/presenter"
	"github.com/jingkaihe/skillforge/pkg/runs"
	"github.com/jingkaihe/skillforge/pkg/scope"
	"github.com/jingkaihe/skillforge/pkg/validator"
)

// Pipeline statuses.
const (
	StatusSuccess          = "success"
	StatusFailedValidation = "failed_validation"
	StatusError            = "error"
)

// DefaultOutputDir is used when no output directory is configured.
const DefaultOutputDir = "skillforge_output"

// Config carries the engine's dependencies.
type Config struct {
	Presenter presenter.Presenter
	// Source is the knowledge service used for canon collection. Nil
	// means offline generation.
	Source canon.KnowledgeSource
	// Store records run history when non-nil. Store failures never fail
	// the pipeline.
	Store     *runs.Store
	OutputDir string
}

// Engine runs the generation pipeline. All components are constructed
// up front in New.
type Engine struct {
	builder     *scope.Builder
	collector   *canon.Collector
	interviewer *overlay.Interviewer
	store       *runs.Store
	outputDir   string
}

// New constructs an Engine with all pipeline components.
func New(cfg Config) *Engine {
	pres := cfg.Presenter
	if pres == nil {
		pres = presenter.Default()
	}
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}

	return &Engine{
		builder:     scope.NewBuilder(pres),
		collector:   canon.NewCollector(cfg.Source),
		interviewer: overlay.NewInterviewer(pres),
		store:       cfg.Store,
		outputDir:   outputDir,
	}
}

// Request describes one generation run.
type Request struct {
	Text        string
	Interactive bool
	// Card skips the scope questionnaire when set; the card is still
	// validated.
	Card *scope.Card
}

// Steps collects the intermediate outputs of the pipeline.
type Steps struct {
	ScopeCard *scope.Card       `json:"scope_card,omitempty"`
	Freedom   *freedom.Decision `json:"degrees_of_freedom,omitempty"`
	Canon     *canon.Canon      `json:"external_canon,omitempty"`
	Contract  *canon.Contract   `json:"contract,omitempty"`
	Overlay   *overlay.Overlay  `json:"local_overlay,omitempty"`
	SkillMD   string            `json:"skill_md,omitempty"`
}

// Result is the full outcome of a generation run, also persisted as
// metadata.json in the artifact directory.
type Result struct {
	Status     string              `json:"status"`
	Steps      Steps               `json:"steps"`
	Validation *validator.Report   `json:"validation,omitempty"`
	Conflicts  []compiler.Conflict `json:"conflicts,omitempty"`
	Artifacts  []string            `json:"artifacts"`
	Errors     []string            `json:"errors"`
	Warnings   []string            `json:"warnings"`
}

// Generate runs the full pipeline. It always returns a result; failures
// are reported through the result status rather than an error return.
func (e *Engine) Generate(ctx context.Context, req Request) *Result {
	log := logger.G(ctx).WithField("request", req.Text)
	log.Info("starting skill generation")

	result := &Result{
		Status:    StatusError,
		Artifacts: []string{},
		Errors:    []string{},
		Warnings:  []string{},
	}

	card, err := e.scopeCard(ctx, req)
	if err != nil {
		result.Steps.ScopeCard = card
		result.Errors = append(result.Errors, err.Error())
		e.recordRun(ctx, req.Text, result)
		return result
	}
	result.Steps.ScopeCard = card

	log.Info("step 2: determining degrees of freedom")
	decision := freedom.Classify(card)
	result.Steps.Freedom = &decision

	log.Info("step 3: collecting external canon")
	cn := e.collector.Collect(ctx, card)
	result.Steps.Canon = cn

	log.Info("step 4: extracting contract")
	contract := canon.ExtractContract(cn)
	result.Steps.Contract = &contract

	log.Info("step 5: collecting local overlay")
	ov := e.interviewer.Interview(ctx, card, req.Interactive)
	result.Steps.Overlay = ov

	log.Info("step 6: compiling skill document")
	compiled, err := compiler.Compile(card, cn, ov)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		e.recordRun(ctx, req.Text, result)
		return result
	}
	result.Steps.SkillMD = compiled.SkillMD
	result.Conflicts = compiled.Conflicts
	result.Warnings = append(result.Warnings, compiled.Warnings...)

	log.Info("running quality gates")
	result.Validation = validator.Validate(compiled.SkillMD, card, cn)
	if result.Validation.Passed {
		result.Status = StatusSuccess
	} else {
		result.Status = StatusFailedValidation
		result.Errors = append(result.Errors, result.Validation.Errors...)
	}

	// The document is persisted even when validation failed.
	if err := e.saveArtifacts(ctx, result, ov); err != nil {
		result.Status = StatusError
		result.Errors = append(result.Errors, err.Error())
	}

	e.recordRun(ctx, req.Text, result)
	log.WithField("status", result.Status).Info("skill generation completed")
	return result
}

// scopeCard runs step 1, either validating a pre-approved card or
// building one through the scope builder.
func (e *Engine) scopeCard(ctx context.Context, req Request) (*scope.Card, error) {
	if req.Card != nil {
		logger.G(ctx).Info("step 1: using pre-approved scope card")
		if fieldErrs := req.Card.Validate(); len(fieldErrs) > 0 {
			return req.Card, errors.Errorf("scope card invalid: %v", fieldErrs)
		}
		return req.Card, nil
	}

	logger.G(ctx).Info("step 1: building scope card")
	return e.builder.Build(ctx, req.Text, req.Interactive)
}

// saveArtifacts writes the artifact directory: SKILL.md, metadata.json,
// and user_overrides.md when the overlay carries user content.
func (e *Engine) saveArtifacts(ctx context.Context, result *Result, ov *overlay.Overlay) error {
	dir := filepath.Join(e.outputDir, output.ArtifactDirName(time.Now()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create artifact directory")
	}
	result.Artifacts = append(result.Artifacts, dir)

	if err := os.WriteFile(filepath.Join(dir, output.SkillFileName), []byte(result.Steps.SkillMD), 0o644); err != nil {
		return errors.Wrap(err, "failed to write SKILL.md")
	}

	if !ov.IsDefault() {
		if err := overlay.SaveUserOverrides(ov, filepath.Join(dir, "user_overrides.md")); err != nil {
			return err
		}
	}

	metadata, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal run metadata")
	}
	if err := os.WriteFile(filepath.Join(dir, output.MetadataFileName), metadata, 0o644); err != nil {
		return errors.Wrap(err, "failed to write metadata")
	}

	logger.G(ctx).WithField("dir", dir).Info("artifacts saved")
	return nil
}

// recordRun saves the run to the history store, best effort.
func (e *Engine) recordRun(ctx context.Context, request string, result *Result) {
	if e.store == nil {
		return
	}

	skillName := ""
	if result.Steps.ScopeCard != nil && result.Steps.SkillMD != "" {
		skillName = compiler.SkillName(result.Steps.ScopeCard.Goal)
	}
	artifactDir := ""
	if len(result.Artifacts) > 0 {
		artifactDir = result.Artifacts[0]
	}

	run := runs.NewRun(request, result.Status, skillName, artifactDir)
	if err := e.store.Save(ctx, run); err != nil {
		logger.G(ctx).WithError(err).Warn("could not record run history")
		result.Warnings = append(result.Warnings, "run history not recorded: "+err.Error())
	}
}
