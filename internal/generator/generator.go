// Package generator produces one tailored resume PDF per matched job
// record. Each record is handled independently; a failing compile for one
// job never touches the artifacts of another.
package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"jobtailor/internal/config"
	"jobtailor/internal/latex"
	"jobtailor/internal/llm"
	"jobtailor/internal/logging"
	"jobtailor/pkg/models"
	"jobtailor/pkg/utils"
)

// CompileFunc compiles LaTeX source to PDF bytes.
type CompileFunc func(ctx context.Context, cfg *config.Config, latexSource string) ([]byte, error)

// Generator renders and compiles resume artifacts.
type Generator struct {
	cfg      *config.Config
	engine   *latex.Engine
	rewriter llm.Rewriter
	compile  CompileFunc
	logger   *zap.Logger
}

// New creates a generator. rewriter may be nil, in which case bullets keep
// their original text.
func New(cfg *config.Config, rewriter llm.Rewriter) *Generator {
	return NewWithCompiler(cfg, rewriter, latex.Compile)
}

// NewWithCompiler creates a generator with a custom compile function.
func NewWithCompiler(cfg *config.Config, rewriter llm.Rewriter, compile CompileFunc) *Generator {
	return &Generator{
		cfg:      cfg,
		engine:   latex.NewEngine(),
		rewriter: rewriter,
		compile:  compile,
		logger:   logging.GetGlobalLogger(),
	}
}

// Generate builds the tailored resume for one record and returns the
// artifact path. The PDF is written only after a successful compile, so a
// failure leaves no partial artifact behind.
func (g *Generator) Generate(ctx context.Context, rec *models.JobRecord, profile *models.Profile) (string, error) {
	if rec.MatchedExperience == nil {
		return "", fmt.Errorf("record %s has no matched experience", rec.ID)
	}

	rewrites := g.rewriteBullets(ctx, rec, profile)

	doc := latex.BuildDocument(profile, rec, rec.MatchedExperience, rewrites)
	source, err := g.engine.Render(doc, g.cfg.Generator.Theme)
	if err != nil {
		return "", fmt.Errorf("render resume: %w", err)
	}

	compileCtx := ctx
	if g.cfg.Generator.Timeout > 0 {
		var cancel context.CancelFunc
		compileCtx, cancel = context.WithTimeout(ctx, g.cfg.Generator.Timeout)
		defer cancel()
	}

	pdf, err := g.compile(compileCtx, g.cfg, source)
	if err != nil {
		return "", fmt.Errorf("compile resume: %w", err)
	}

	path, err := g.writeArtifact(rec, pdf)
	if err != nil {
		return "", err
	}

	g.logger.Info("resume generated",
		zap.String("record_id", rec.ID),
		zap.String("company", rec.Company),
		zap.String("artifact", path),
	)
	return path, nil
}

// rewriteBullets tailors the selected bullets towards the job's
// requirements. Rewriting is best effort: any failure keeps the original
// text and generation continues.
func (g *Generator) rewriteBullets(ctx context.Context, rec *models.JobRecord, profile *models.Profile) map[string]string {
	if g.rewriter == nil || !g.cfg.LLM.RewriteEnabled || rec.Requirements == nil {
		return nil
	}

	byID := make(map[string]string)
	for _, item := range profile.Bullets() {
		byID[item.ID] = item.Text
	}

	rewrites := make(map[string]string, len(rec.MatchedExperience))
	for _, m := range rec.MatchedExperience {
		original, ok := byID[m.ItemID]
		if !ok {
			g.logger.Warn("matched item no longer present in profile",
				zap.String("record_id", rec.ID),
				zap.String("item_id", m.ItemID),
			)
			continue
		}
		rewritten, err := g.rewriter.RewriteBullet(ctx, original, rec.Requirements)
		if err != nil {
			g.logger.Warn("bullet rewrite failed, keeping original",
				zap.String("item_id", m.ItemID),
				zap.Error(err),
			)
			continue
		}
		if rewritten != original {
			rewrites[m.ItemID] = rewritten
		}
	}
	return rewrites
}

// writeArtifact stores the PDF under a record-addressed name so reruns for
// the same record overwrite their own artifact and nothing else.
func (g *Generator) writeArtifact(rec *models.JobRecord, pdf []byte) (string, error) {
	if err := os.MkdirAll(g.cfg.Generator.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	idPart := rec.ID
	if len(idPart) > 8 {
		idPart = idPart[:8]
	}
	stem := utils.SafeFileStem(rec.Company, rec.Title, idPart)
	if stem == "" {
		stem = idPart
	}
	path := filepath.Join(g.cfg.Generator.OutputDir, stem+".pdf")

	if err := os.WriteFile(path, pdf, 0644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}
