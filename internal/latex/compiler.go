package latex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"jobtailor/internal/config"
)

// Compile takes LaTeX source and compiles it to PDF. A configured remote
// renderer takes precedence; otherwise the configured engine (tectonic or
// pdflatex) runs in an isolated temp directory. Returns the produced PDF
// bytes or an error containing the compiler log on failure.
func Compile(ctx context.Context, cfg *config.Config, latexSource string) ([]byte, error) {
	if strings.TrimSpace(latexSource) == "" {
		return nil, fmt.Errorf("empty LaTeX source")
	}

	if rendererURL := strings.TrimSpace(cfg.Generator.RendererURL); rendererURL != "" {
		return compileRemote(ctx, rendererURL, latexSource)
	}

	return compileLocal(ctx, cfg.Generator.CompileCmd, latexSource)
}

func compileRemote(ctx context.Context, rendererURL, latexSource string) ([]byte, error) {
	body, _ := json.Marshal(map[string]string{"latex": latexSource})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(rendererURL, "/")+"/compile", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("renderer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("renderer error: status=%d body=%s", resp.StatusCode, string(b))
	}
	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read renderer response: %w", err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("renderer returned empty pdf")
	}
	return pdf, nil
}

func compileLocal(ctx context.Context, compileCmd, latexSource string) ([]byte, error) {
	workDir, err := os.MkdirTemp("", "resume-build-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	texFile := filepath.Join(workDir, "document.tex")
	if err := os.WriteFile(texFile, []byte(latexSource), 0644); err != nil {
		return nil, fmt.Errorf("write tex file: %w", err)
	}

	var cmd *exec.Cmd
	switch filepath.Base(compileCmd) {
	case "", "tectonic":
		if compileCmd == "" {
			compileCmd = "tectonic"
		}
		cmd = exec.CommandContext(ctx, compileCmd, "--outdir", workDir, texFile)
	default:
		// pdflatex-compatible engines; nonstopmode and halt-on-error keep
		// the run deterministic.
		cmd = exec.CommandContext(ctx, compileCmd, "-interaction=nonstopmode", "-halt-on-error", "-output-directory", workDir, texFile)
	}
	cmd.Dir = workDir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w; log:\n%s", filepath.Base(compileCmd), err, out.String())
	}

	pdfPath := filepath.Join(workDir, "document.pdf")
	pdfBytes, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w; log:\n%s", err, out.String())
	}

	return pdfBytes, nil
}
