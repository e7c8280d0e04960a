package usecase

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"trader-bot/internal/domain"
)

// Trigger vocabularies for active members, matched as substrings of the
// lowercased message in this order.
var (
	greetingTriggers   = []string{"hola", "menu", "menú", "buenas", "buenos días", "inicio"}
	schedulingTriggers = []string{"agendar", "agenda", "cita", "sesión", "sesion", "llamada"}
	eventTriggers      = []string{"evento", "eventos", "fiesta", "networking", "meetup"}
)

func containsAny(text string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func preRegistrationPersona(links Links) string {
	return strings.Join([]string{
		"Eres el asistente de pre-registro de TraderMexico.mx, una comunidad de educación en trading.",
		"La persona que te escribe todavía no es miembro.",
		"Responde en español, con calidez y en máximo 3 frases cortas.",
		"Resuelve dudas generales sobre la comunidad y el trading sin dar recomendaciones de inversión personalizadas.",
		"Invítala a registrarse en " + links.Registration + " para recibir mentoría.",
	}, "\n")
}

func onboardingPersona(rec domain.Record) string {
	name := firstNonEmpty(rec.Name, "el miembro")
	lines := []string{
		fmt.Sprintf("Eres el asistente de bienvenida de TraderMexico.mx y hablas con %s.", name),
		"Su registro existe pero su membresía aún no está activa.",
		"Responde en español, en máximo 4 frases, y guíale para completar su activación.",
		"Si pregunta por sesiones o eventos, explícale que se habilitan al activar la membresía.",
	}
	if extra := describeExtra(rec.Extra); extra != "" {
		lines = append(lines, "Datos del miembro:\n"+extra)
	}
	return strings.Join(lines, "\n")
}

func mentorPersona(level string, rec domain.Record) string {
	lines := []string{
		fmt.Sprintf("Eres un mentor de trading de TraderMexico.mx para miembros de nivel %s.", level),
		"Adapta la profundidad técnica a ese nivel y responde en español en máximo 5 frases.",
		"No prometas rendimientos ni des recomendaciones de compra o venta concretas.",
	}
	if rec.Name != "" {
		lines = append(lines, "El miembro se llama "+rec.Name+".")
	}
	if extra := describeExtra(rec.Extra); extra != "" {
		lines = append(lines, "Datos del miembro:\n"+extra)
	}
	return strings.Join(lines, "\n")
}

// describeExtra renders forwarded directory attributes, sorted by key.
func describeExtra(extra map[string]any) string {
	if len(extra) == 0 {
		return ""
	}
	lines := make([]string, 0, len(extra))
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		lines = append(lines, fmt.Sprintf("- %s: %s", k, domain.Text(extra[k])))
	}
	return strings.Join(lines, "\n")
}

func closingMessage(links Links) string {
	return "Has alcanzado el límite de mensajes de prueba. 🙌 Para seguir conversando y recibir mentoría, regístrate en " +
		links.Registration
}

func menuMessage(name, level string) string {
	greeting := "¡Hola! 👋"
	if name != "" {
		greeting = fmt.Sprintf("¡Hola, %s! 👋", name)
	}
	return strings.Join([]string{
		greeting + " Eres miembro nivel *" + level + "* de TraderMexico.",
		"¿En qué te ayudo hoy?",
		"1️⃣ Agendar una sesión con tu mentor (escribe *agendar*)",
		"2️⃣ Próximos eventos de la comunidad (escribe *eventos*)",
		"3️⃣ Pregúntame cualquier duda de trading",
	}, "\n")
}

func schedulingMessage(level string, links Links) string {
	return fmt.Sprintf("📅 Agenda tu sesión de nivel %s aquí: %s", level, schedulingLink(level, links))
}

// schedulingLink picks the calendar for a sub-level, falling back to the
// base link for anything unrecognized.
func schedulingLink(level string, links Links) string {
	l := strings.ToLower(level)
	switch {
	case strings.Contains(l, "avanzado"):
		return links.SchedulingAvanzado
	case strings.Contains(l, "intermedio"):
		return links.SchedulingIntermedio
	default:
		return links.SchedulingBase
	}
}

func eventMessage(links Links) string {
	return "🎉 Consulta los próximos eventos de la comunidad TraderMexico: " + links.Event
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
