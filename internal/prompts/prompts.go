package prompts

import (
	"strings"

	"go.uber.org/zap"
)

// DefaultVersion is used when a requested prompt version does not exist.
const DefaultVersion = "v1"

const cvPlaceholder = "{cv_text}"

var templates = map[string]string{
	"v1": `Analyze the following CV and provide a comprehensive assessment.

CV Content:
{cv_text}

Please provide:
1. Overall score (0-100) with justification
2. Detected skills (list)
3. Identified gaps (list)
4. Seniority level assessment (junior/mid/senior/lead)
5. ATS (Applicant Tracking System) compatibility issues (list)
6. Improvement recommendations (structured plan)

Format your response as JSON with the following structure:
{
    "overall_score": <number>,
    "score_breakdown": {
        "content_quality": <number>,
        "structure": <number>,
        "skills_match": <number>,
        "ats_compatibility": <number>
    },
    "skills": ["skill1", "skill2", ...],
    "gaps": ["gap1", "gap2", ...],
    "seniority_level": "<level>",
    "ats_issues": ["issue1", "issue2", ...],
    "improvement_plan": "<detailed recommendations>",
    "summary": "<overall assessment summary>"
}
`,

	"v2": `You are an expert CV reviewer. Analyze this CV thoroughly.

CV:
{cv_text}

Provide a detailed analysis including:
- Quantitative scores (0-100) for key dimensions
- Skills extraction and categorization
- Career progression assessment
- ATS optimization feedback
- Actionable improvement recommendations

Return structured JSON matching this schema:
{
    "overall_score": <0-100>,
    "scores": [
        {"category": "Content Quality", "score": <0-100>, "description": "..."},
        {"category": "Structure", "score": <0-100>, "description": "..."},
        {"category": "Skills Presentation", "score": <0-100>, "description": "..."},
        {"category": "ATS Compatibility", "score": <0-100>, "description": "..."}
    ],
    "skills": ["skill1", "skill2"],
    "gaps": ["gap1", "gap2"],
    "seniority_level": "<level>",
    "ats_issues": ["issue1"],
    "improvement_plan": "<detailed plan>",
    "summary": "<summary>"
}
`,
}

// Get returns the prompt template for the given version. Unknown versions
// fall back to DefaultVersion with a warning; the effective version is
// returned so callers can record what was actually used.
func Get(version string, log *zap.Logger) (template string, effective string) {
	if _, ok := templates[version]; !ok {
		log.Warn("prompt version not found, using default",
			zap.String("version", version),
			zap.String("default", DefaultVersion))
		version = DefaultVersion
	}
	return templates[version], version
}

// Render substitutes the CV text into a prompt template.
func Render(template, cvText string) string {
	return strings.ReplaceAll(template, cvPlaceholder, cvText)
}

// Versions lists the known prompt versions.
func Versions() []string {
	out := make([]string, 0, len(templates))
	for v := range templates {
		out = append(out, v)
	}
	return out
}
