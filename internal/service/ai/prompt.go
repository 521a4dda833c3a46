package ai

import (
	"fmt"
	"strings"
)

// Profile defines the assistant persona rendered into the system instruction.
type Profile struct {
	Role          string
	Region        string
	Style         string
	Rules         []string
	SafetyRules   []string
	ImageHandling string
}

// DefaultProfile is the home-repair assistant used when no override is configured.
func DefaultProfile() Profile {
	return Profile{
		Role:   "un asistente experto en problemas del hogar",
		Region: "Argentina",
		Style:  "Respondé con pasos claros y concretos, en lenguaje sencillo.",
		Rules: []string{
			"Da una sola solución clara y concreta por vez.",
			"Nombrá los materiales y herramientas como se conocen en Argentina.",
			"No te salgas del tema del hogar.",
		},
		SafetyRules: []string{
			"No des diagnósticos eléctricos ni de gas.",
			"Ante cualquier riesgo recomendá un profesional matriculado.",
		},
		ImageHandling: "Si el usuario sube una imagen, describí lo que ves y cómo proceder.",
	}
}

// BuildSystemInstruction renders the profile as a system prompt. A non-empty
// override replaces the rendered prompt entirely.
func BuildSystemInstruction(profile Profile, override string) string {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		return trimmed
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sos %s en %s. %s", profile.Role, profile.Region, profile.Style)
	if profile.ImageHandling != "" {
		b.WriteString(" ")
		b.WriteString(profile.ImageHandling)
	}

	writeRules(&b, "Reglas", profile.Rules)
	writeRules(&b, "Seguridad", profile.SafetyRules)
	return b.String()
}

func writeRules(b *strings.Builder, title string, rules []string) {
	if len(rules) == 0 {
		return
	}
	b.WriteString("\n\n")
	b.WriteString(title)
	b.WriteString(":")
	for _, rule := range rules {
		b.WriteString("\n- ")
		b.WriteString(rule)
	}
}
