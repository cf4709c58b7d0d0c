package embedded

import (
	_ "embed"
)

// Embed all prompt data files
//
//go:embed data/prompts/subject_analysis.txt
var SubjectAnalysisPromptTxt []byte

//go:embed data/prompts/narrative_system.txt
var NarrativeSystemPromptTxt []byte

//go:embed data/prompts/narrative_user.tmpl
var NarrativeUserPromptTmpl []byte

//go:embed data/prompts/illustration_style.txt
var IllustrationStyleTxt []byte

//go:embed data/catalog/themes.json
var ThemesJSON []byte
