package latex

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"jobtailor/pkg/models"
)

// Engine renders a tailored resume document into LaTeX using named themes.
type Engine struct {
}

func NewEngine() *Engine { return &Engine{} }

// Render renders a pre-escaped Document with the named theme and returns
// LaTeX source. The document must come from BuildDocument; the templates
// contain no escaping of their own.
func (e *Engine) Render(doc Document, theme string) (string, error) {
	tstr, err := getThemeTemplate(theme)
	if err != nil {
		return "", err
	}

	funcMap := template.FuncMap{
		"join": strings.Join,
	}
	tmpl, err := template.New("resume").Funcs(funcMap).Parse(tstr)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// ===== Theme selection =====

const DefaultTheme = "default"

func getThemeTemplate(theme string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(theme)) {
	case "", DefaultTheme:
		return defaultThemeTemplate, nil
	default:
		return "", fmt.Errorf("unknown theme: %s", theme)
	}
}

// ===== View model =====

// Document is the fully escaped view model handed to the theme template.
// Every display field is escaped exactly once by BuildDocument. URL fields
// (LinkedIn, Github, Website) are kept raw because they land inside \href
// arguments, where escaping would break the link target.
type Document struct {
	Name     string
	Email    string
	Phone    string
	Location string
	LinkedIn string
	Github   string
	Website  string
	Summary  string

	TargetTitle   string
	TargetCompany string

	Education    []EducationEntry
	Experiences  []SectionEntry
	Projects     []SectionEntry
	Languages    []string
	Technologies []string
}

type EducationEntry struct {
	Institution string
	Degree      string
	Dates       string
	Location    string
}

// SectionEntry is one experience or project block with the bullets chosen
// for this particular job.
type SectionEntry struct {
	Heading  string
	Role     string
	Dates    string
	Location string
	Bullets  []string
}

// BuildDocument assembles the view model for one job from the profile, the
// matched experience selection and any rewritten bullet texts (keyed by
// item ID). Sections keep document order; within a section only selected
// bullets appear, in their original order. A section none of whose bullets
// were selected keeps all its original bullets, so the resume never ships
// an empty role.
func BuildDocument(profile *models.Profile, rec *models.JobRecord, matches []models.Match, rewrites map[string]string) Document {
	selected := make(map[string]bool, len(matches))
	for _, m := range matches {
		selected[m.ItemID] = true
	}

	doc := Document{
		Name:          Escape(profile.Personal.Name),
		Email:         Escape(profile.Personal.Email),
		Phone:         Escape(profile.Personal.Phone),
		Location:      Escape(profile.Personal.Location),
		LinkedIn:      strings.TrimSpace(profile.Personal.LinkedIn),
		Github:        strings.TrimSpace(profile.Personal.Github),
		Website:       strings.TrimSpace(profile.Personal.Website),
		Summary:       Escape(profile.Personal.Summary),
		TargetTitle:   Escape(rec.Title),
		TargetCompany: Escape(rec.Company),
		Languages:     escapeAll(profile.Skills.Languages),
		Technologies:  escapeAll(profile.Skills.Technologies),
	}

	for _, edu := range profile.Education {
		doc.Education = append(doc.Education, EducationEntry{
			Institution: Escape(edu.Institution),
			Degree:      Escape(edu.Degree),
			Dates:       Escape(edu.Dates),
			Location:    Escape(edu.Location),
		})
	}

	for _, exp := range profile.Experiences {
		doc.Experiences = append(doc.Experiences, SectionEntry{
			Heading:  Escape(exp.Company),
			Role:     Escape(exp.Role),
			Dates:    Escape(exp.Dates),
			Location: Escape(exp.Location),
			Bullets:  selectBullets(exp.Company, exp.Bullets, selected, rewrites),
		})
	}

	for _, proj := range profile.Projects {
		doc.Projects = append(doc.Projects, SectionEntry{
			Heading: Escape(proj.Name),
			Role:    Escape(proj.Role),
			Dates:   Escape(proj.Dates),
			Bullets: selectBullets(proj.Name, proj.Bullets, selected, rewrites),
		})
	}

	return doc
}

// selectBullets keeps the selected bullets of one section in document
// order, substituting a rewritten text when one exists. When nothing in
// the section was selected it returns all original bullets.
func selectBullets(source string, bullets []string, selected map[string]bool, rewrites map[string]string) []string {
	var out []string
	for i, b := range bullets {
		id := fmt.Sprintf("%s#%d", source, i)
		if !selected[id] {
			continue
		}
		if rw, ok := rewrites[id]; ok && strings.TrimSpace(rw) != "" {
			b = rw
		}
		out = append(out, Escape(b))
	}
	if len(out) == 0 {
		return escapeAll(bullets)
	}
	return out
}

// ===== DEFAULT THEME TEMPLATE =====

const defaultThemeTemplate = `\documentclass[10pt, letterpaper]{article}

% Packages:
\usepackage[
    ignoreheadfoot,
    top=2 cm,
    bottom=2 cm,
    left=2 cm,
    right=2 cm,
    footskip=1.0 cm,
]{geometry}
\usepackage{titlesec}
\usepackage{tabularx}
\usepackage{array}
\usepackage[dvipsnames]{xcolor}
\definecolor{primaryColor}{RGB}{0, 0, 0}
\usepackage{enumitem}
\usepackage{fontawesome5}
\usepackage{amsmath}
\usepackage[
    pdftitle={ {{- .Name }} -- {{ .TargetCompany -}} },
    pdfauthor={ {{- .Name -}} },
    colorlinks=true,
    urlcolor=primaryColor
]{hyperref}
\usepackage{calc}
\usepackage{bookmark}
\usepackage{changepage}
\usepackage{paracol}
\usepackage{needspace}
\usepackage{iftex}

\ifPDFTeX
    \pdfgentounicode=1
    \usepackage[T1]{fontenc}
    \usepackage[utf8]{inputenc}
    \usepackage{lmodern}
\fi

\usepackage{charter}

% Settings
\raggedright
\AtBeginEnvironment{adjustwidth}{\partopsep0pt}
\pagestyle{empty}
\setcounter{secnumdepth}{0}
\setlength{\parindent}{0pt}
\setlength{\topskip}{0pt}
\setlength{\columnsep}{0.15cm}
\pagenumbering{gobble}

\titleformat{\section}{\needspace{4\baselineskip}\bfseries\large}{}{0pt}{}[\vspace{1pt}\titlerule]
\titlespacing{\section}{-1pt}{0.3 cm}{0.2 cm}

\renewcommand\labelitemi{$\vcenter{\hbox{\small$\bullet$}}$}
\newenvironment{highlights}{\begin{itemize}[topsep=0.10 cm,parsep=0.10 cm,partopsep=0pt,itemsep=0pt,leftmargin=0 cm + 10pt]}{\end{itemize}}
\newenvironment{onecolentry}{\begin{adjustwidth}{0 cm + 0.00001 cm}{0 cm + 0.00001 cm}}{\end{adjustwidth}}
\newenvironment{twocolentry}[2][]{\onecolentry\def\secondColumn{#2}\setcolumnwidth{\fill, 4.5 cm}\begin{paracol}{2}}{\switchcolumn \raggedleft \secondColumn\end{paracol}\endonecolentry}
\newenvironment{header}{\setlength{\topsep}{0pt}\par\kern\topsep\centering\linespread{1.5}}{\par\kern\topsep}

\begin{document}
    \begin{header}
        \fontsize{25 pt}{25 pt}\selectfont {{ .Name }}

        \vspace{5 pt}

        \normalsize
        {{- if .Location }}\mbox{\faMapMarker*}\ {{ .Location }}{{ end }}
        {{- if .Email }}\kern 5.0 pt\mbox{\faEnvelope}\ {\href{mailto:{{ .Email }}}{ {{ .Email }} }}{{ end }}
        {{- if .Phone }}\kern 5.0 pt\mbox{\faPhone}\ {\href{tel:{{ .Phone }}}{ {{ .Phone }} }}{{ end }}
        {{- if .LinkedIn }}\kern 5.0 pt\mbox{\faLinkedin}\ {\href{ {{ .LinkedIn }} }{LinkedIn}}{{ end }}
        {{- if .Github }}\kern 5.0 pt\mbox{\faGithub}\ {\href{ {{ .Github }} }{GitHub}}{{ end }}
        {{- if .Website }}\kern 5.0 pt\mbox{\faGlobe}\ {\href{ {{ .Website }} }{Website}}{{ end }}
    \end{header}

    \vspace{5 pt - 0.3 cm}

    {{- if .Summary }}
    \section{Profile}
        \begin{onecolentry}
            {{ .Summary }}
        \end{onecolentry}
    {{- end }}

    {{- if .Experiences }}
    \section{Experience}
    {{- range .Experiences }}
        \begin{twocolentry}{
            {{ .Dates }}
        }
            \textbf{ {{- .Role -}} }, {{ .Heading }}{{ if .Location }} -- {{ .Location }}{{ end }}\end{twocolentry}
        \vspace{0.10 cm}
        {{- if .Bullets }}\begin{onecolentry}\begin{highlights}{{ range .Bullets }}\item {{ . }}{{ end }}\end{highlights}\end{onecolentry}{{ end }}
        \vspace{0.2 cm}
    {{- end }}
    {{- end }}

    {{- if .Projects }}
    \section{Projects}
    {{- range .Projects }}
        \begin{twocolentry}{
            {{ .Dates }}
        }
            \textbf{ {{- .Heading -}} }{{ if .Role }} -- \textit{ {{- .Role -}} }{{ end }}\end{twocolentry}
        \vspace{0.10 cm}
        {{- if .Bullets }}\begin{onecolentry}\begin{highlights}{{ range .Bullets }}\item {{ . }}{{ end }}\end{highlights}\end{onecolentry}{{ end }}
        \vspace{0.2 cm}
    {{- end }}
    {{- end }}

    {{- if .Education }}
    \section{Education}
    {{- range .Education }}
        \begin{twocolentry}{
            {{ .Dates }}
        }
            \textbf{ {{- .Institution -}} }, {{ .Degree }}{{ if .Location }} -- {{ .Location }}{{ end }}\end{twocolentry}
        \vspace{0.2 cm}
    {{- end }}
    {{- end }}

    {{- if or .Languages .Technologies }}
    \section{Skills}
        {{- if .Languages }}\begin{onecolentry}\textbf{Languages:} {{ join .Languages ", " }}\end{onecolentry}{{ end }}
        {{- if .Technologies }}\vspace{0.2 cm}\begin{onecolentry}\textbf{Technologies:} {{ join .Technologies ", " }}\end{onecolentry}{{ end }}
    {{- end }}

\end{document}
`
