// pdf-renderer is the optional companion service for resume compilation.
// It exposes POST /compile taking {"latex": ...} and answering with PDF
// bytes, so the pipeline can run on machines without a TeX installation by
// pointing generator.renderer_url at this service.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

type compileRequest struct {
	Latex string `json:"latex"`
}

const (
	maxRequestBytes = 1 << 20
	compileTimeout  = 60 * time.Second
)

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/compile", compileHandler)

	addr := ":8999"
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		addr = ":" + v
	}
	log.Printf("pdf-renderer listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func compileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req compileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid json: %v", err), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Latex) == "" {
		http.Error(w, "latex is required", http.StatusBadRequest)
		return
	}
	if err := validateLatex(req.Latex); err != nil {
		http.Error(w, fmt.Sprintf("latex rejected: %v", err), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), compileTimeout)
	defer cancel()

	pdf, buildLog, err := compile(ctx, req.Latex)
	if err != nil {
		http.Error(w, fmt.Sprintf("latex compile failed: %v\n%s", err, buildLog), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func compile(ctx context.Context, source string) ([]byte, string, error) {
	workDir, err := os.MkdirTemp("", "renderer-build-*")
	if err != nil {
		return nil, "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	texFile := filepath.Join(workDir, "document.tex")
	if err := os.WriteFile(texFile, []byte(source), 0600); err != nil {
		return nil, "", fmt.Errorf("write tex file: %w", err)
	}

	engine := strings.TrimSpace(os.Getenv("COMPILE_CMD"))
	if engine == "" {
		engine = "tectonic"
	}

	var cmd *exec.Cmd
	if filepath.Base(engine) == "tectonic" {
		cmd = exec.CommandContext(ctx, engine, "--outdir", workDir, texFile)
	} else {
		cmd = exec.CommandContext(ctx, engine, "-interaction=nonstopmode", "-halt-on-error", "-no-shell-escape", "-output-directory", workDir, texFile)
	}
	cmd.Dir = workDir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return nil, out.String(), err
	}

	pdf, err := os.ReadFile(filepath.Join(workDir, "document.pdf"))
	if err != nil {
		return nil, out.String(), fmt.Errorf("read pdf: %w", err)
	}
	return pdf, out.String(), nil
}

var inputRe = regexp.MustCompile(`\\(input|include)\s*\{([^}]*)\}`)

// validateLatex rejects primitives that read or write outside the build
// directory. The renderer compiles untrusted sources; file IO and shell
// escape stay off the table.
func validateLatex(src string) error {
	lower := strings.ToLower(src)

	for _, deny := range []string{`\write18`, `\openout`, `\openin`, `\read`} {
		if strings.Contains(lower, deny) {
			return fmt.Errorf("contains forbidden primitive: %s", deny)
		}
	}

	for _, m := range inputRe.FindAllStringSubmatch(lower, -1) {
		arg := strings.TrimSpace(m[2])
		if strings.HasPrefix(arg, "/") || strings.Contains(arg, "://") || strings.Contains(arg, "..") {
			return fmt.Errorf("forbidden include path: %s", arg)
		}
	}
	return nil
}
