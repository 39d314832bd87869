package main

// Generate a resume against a running API:
//   go run ./cmd/generate -jd job.txt -template resume.txt -style modern -out resume.html
//   go run ./cmd/generate -jd job.txt -format pdf -out resume.pdf

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"resume-builder/internal/builder"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/uploads"
	"resume-builder/resume/render"
)

func main() {
	cfg := config.Load()
	telemetry.Init(getLevel(cfg.LogLevel))
	defer telemetry.Sync()

	serverURL := flag.String("server", "http://localhost:"+strings.TrimPrefix(cfg.Port, ":"), "API base URL")
	jdPath := flag.String("jd", "", "path to job description text ('-' reads stdin)")
	templatePath := flag.String("template", "", "path to an existing resume (pdf, doc, docx or txt)")
	styleFlag := flag.String("style", "modern", "page style: modern or classic")
	format := flag.String("format", "html", "output format: html, pdf or json")
	outPath := flag.String("out", "", "output path (default stdout)")
	quiet := flag.Bool("q", false, "do not print progress")
	flag.Parse()

	jd, err := readJobDescription(*jdPath)
	if err != nil {
		exitErr(err.Error())
	}
	style, err := render.ParseStyle(*styleFlag)
	if err != nil {
		exitErr(err.Error())
	}

	session := builder.NewSession(builder.NewClient(*serverURL))
	session.SetJobDescription(jd)
	session.SetStyle(style)
	if *templatePath != "" {
		tmpl, err := uploads.ReadTemplateFile(*templatePath)
		if err != nil {
			exitErr(templateMessage(err))
		}
		session.SetTemplate(tmpl.FileName, tmpl.Text)
	}
	if !*quiet {
		session.OnChange(func(s builder.State) {
			if s.Loading {
				fmt.Fprintf(os.Stderr, "\rreceived %d bytes", len(s.Generated))
			}
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	genErr := session.Generate(ctx)
	if !*quiet {
		fmt.Fprintln(os.Stderr)
	}
	if genErr != nil {
		exitErr(genErr.Error())
	}

	out, err := renderOutput(ctx, session, style, *format, cfg)
	if err != nil {
		exitErr(err.Error())
	}
	if *outPath == "" {
		_, _ = os.Stdout.Write(out)
		return
	}
	if err := os.WriteFile(*outPath, out, 0o644); err != nil {
		exitErr(fmt.Sprintf("write output: %v", err))
	}
}

func renderOutput(ctx context.Context, session *builder.Session, style render.Style, format string, cfg config.Config) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		return []byte(session.Snapshot().Generated), nil
	case "html", "pdf":
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	renderer, err := render.NewRenderer()
	if err != nil {
		return nil, err
	}
	var page bytes.Buffer
	if err := session.Preview(&page, renderer); err != nil {
		return nil, err
	}
	if strings.ToLower(format) == "html" {
		return page.Bytes(), nil
	}
	return render.NewPDFRenderer(cfg.ChromePath, cfg.PDFTimeout).RenderPDF(ctx, page.Bytes())
}

func readJobDescription(path string) (string, error) {
	switch strings.TrimSpace(path) {
	case "":
		return "", fmt.Errorf("-jd is required")
	case "-":
		var b bytes.Buffer
		if _, err := b.ReadFrom(os.Stdin); err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return b.String(), nil
	default:
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read job description: %w", err)
		}
		return string(raw), nil
	}
}

func templateMessage(err error) string {
	switch {
	case errors.Is(err, uploads.ErrTooLarge):
		return uploads.MsgTooLarge
	case errors.Is(err, uploads.ErrUnsupportedType):
		return uploads.MsgUnsupportedType
	default:
		return fmt.Sprintf("read template: %v", err)
	}
}

// progress goes to stderr, so keep the logger quiet unless asked
func getLevel(level string) string {
	if level == "info" {
		return "warn"
	}
	return level
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
