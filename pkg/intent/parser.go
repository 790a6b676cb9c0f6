package intent

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Shared grammar fragments. Kept as independent pattern matchers rather
// than one monolithic grammar: each pattern produces candidate spans and
// the results are merged by source position, so overlapping surface forms
// all get a chance to match.
const (
	reVerb = `(?:mueve|mover|gira|girar|rota|rotar|ajusta|ajustar|desplaza|desplazar|pon|coloca|lleva|incrementa|decrementa|sumale|restale|sube|baja)`
	reArt  = `(?:la|el)`
	reSyn  = `(?:juntas?|eslabon(?:es)?|articulacion(?:es)?|conexion(?:es)?|links?|posicion(?:es)?|\bj\b)`
	reNumJ = `(?P<joint>\d+|[a-z]+)`
	reConn = `(?:\s*(?:a|en|hasta|para)\s*)?`
	reSign = `(?P<sign>[+\-]|mas|menos|positivo|negativo)?`
	reAng  = `(?P<ang>\d+(?:[.,]\d*)?)`
	reDeg  = `(?:\s*grados?)?`
)

// Verbs that force a negative delta when no explicit sign is spoken.
var negativeVerbs = map[string]bool{
	"decrementa": true,
	"baja":       true,
	"restale":    true,
	"quita":      true,
	"reduce":     true,
	"disminuye":  true,
}

// Global intent patterns, checked in a fixed scan order regardless of mode.
var (
	reModeA = regexp.MustCompile(`\bmodo\s+(absoluto|relativo)\b`)
	reModeB = regexp.MustCompile(`\b(?:cambia(?:r)?|pon(?:er)?|usa(?:r)?)\s+(?:a\s+)?(absoluto|relativo)\b`)
	reHome  = regexp.MustCompile(`\b(?:ir|ve|volver|regresar|llevar|poner|mover)\s+(?:a\s+)?(?:home|inicio|origen)\b|\bposicion\s+inicial\b`)

	reConfirm = regexp.MustCompile(`\b(?:confirm\w*|acept\w*|ejecut\w*|proced\w*|adelante|dale)\b`)
	reCancel  = regexp.MustCompile(`\b(?:cancel\w*|anul\w*|rechaz\w*|mejor\s+no|deten|para|stop)\b`)

	reConfOn  = regexp.MustCompile(`\b(?:activar|habilitar)\s+confirmacion\b`)
	reConfOff = regexp.MustCompile(`\b(?:desactivar|deshabilitar|quitar)\s+confirmacion\b`)
)

// Absolute-mode surface grammars: joint-first, j#-shorthand, angle-first.
var absPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:(?P<verb>` + reVerb + `)\s+)?(?:` + reArt + `\s+)?` + reSyn + `\s+` + reNumJ + `\s*` + reConn +
		`(?:` + reArt + `\s+)?(?:pos(?:icion)?)?\s*` + reSign + `\s*` + reAng + reDeg),
	regexp.MustCompile(`(?:(?P<verb>` + reVerb + `)\s+)?\bj\s*#?\s*` + reNumJ + `\s*` + reSign + `\s*` + reAng + reDeg),
	regexp.MustCompile(reSign + `\s*` + reAng + reDeg + `\s*` + reConn + `(?:` + reArt + `\s+)?` + reSyn + `\s+` + reNumJ),
}

// Relative-mode surface grammars: joint-first, number-first, j#-shorthand,
// verb-then-angle-first.
var relPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:(?P<verb>` + reVerb + `)\s+)?(?:` + reArt + `\s+)?` + reSyn + `\s+` + reNumJ + `\s*` + reConn + reSign + `\s*` + reAng + reDeg),
	regexp.MustCompile(`(?:(?P<verb>` + reVerb + `)\s+)?` + reNumJ + `\s+(?:` + reArt + `\s+)?` + reSyn + `\s*` + reConn + reSign + `\s*` + reAng + reDeg),
	regexp.MustCompile(`(?:(?P<verb>` + reVerb + `)\s+)?\bj\s*#?\s*` + reNumJ + `\s*` + reSign + `\s*` + reAng + reDeg),
	regexp.MustCompile(`(?:(?P<verb>` + reVerb + `)\s+)` + reSign + `\s*` + reAng + reDeg + `\s*` + reConn + `(?:` + reArt + `\s+)?` + reSyn + `\s+` + reNumJ),
}

// candidate is one motion match before sign and joint resolution.
type candidate struct {
	start int
	joint string
	sign  string
	verb  string
	ang   string
}

// Parse extracts the semantic tokens from one utterance.
//
// Global intents (mode, home, confirm, cancel, confirmation toggles) are
// detected regardless of mode. Motion tokens follow, every match from every
// applicable grammar, ordered by position in the normalized text.
func Parse(text string, mode Mode) []Token {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	s := Normalize(text)
	var out []Token

	if m := reModeA.FindStringSubmatch(s); m != nil {
		out = append(out, modeToken(m[1]))
	} else if m := reModeB.FindStringSubmatch(s); m != nil {
		out = append(out, modeToken(m[1]))
	}
	if reHome.MatchString(s) {
		out = append(out, Token{Kind: KindHome})
	}
	if reConfirm.MatchString(s) {
		out = append(out, Token{Kind: KindConfirm})
	}
	if reCancel.MatchString(s) {
		out = append(out, Token{Kind: KindCancel})
	}
	if reConfOn.MatchString(s) {
		out = append(out, Token{Kind: KindConfirmRequirement, Enabled: true})
	}
	if reConfOff.MatchString(s) {
		out = append(out, Token{Kind: KindConfirmRequirement, Enabled: false})
	}

	switch mode {
	case ModeAbsolute:
		for _, c := range collect(s, absPatterns) {
			joint := wordToInt(c.joint)
			if joint < 1 || joint > maxJoint {
				continue
			}
			angle, ok := parseAngle(c.ang)
			if !ok {
				continue
			}
			out = append(out, Token{
				Kind:    KindAbsoluteMove,
				Joint:   joint,
				Degrees: applySign(angle, c.sign, ""),
			})
		}
	default:
		for _, c := range collect(s, relPatterns) {
			joint := wordToInt(c.joint)
			if joint < 1 || joint > maxJoint {
				continue
			}
			angle, ok := parseAngle(c.ang)
			if !ok {
				continue
			}
			out = append(out, Token{
				Kind:    KindRelativeMove,
				Joint:   joint,
				Degrees: applySign(angle, c.sign, c.verb),
			})
		}
	}

	return out
}

const maxJoint = 6

// collect runs every pattern over s and merges the matches by their
// left-to-right position. Overlapping spans from different grammars are all
// kept; deduplication is deliberately not attempted.
func collect(s string, patterns []*regexp.Regexp) []candidate {
	var cands []candidate
	for _, re := range patterns {
		jointIdx := re.SubexpIndex("joint")
		signIdx := re.SubexpIndex("sign")
		angIdx := re.SubexpIndex("ang")
		verbIdx := re.SubexpIndex("verb")

		for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
			cands = append(cands, candidate{
				start: m[0],
				joint: group(s, m, jointIdx),
				sign:  group(s, m, signIdx),
				verb:  group(s, m, verbIdx),
				ang:   group(s, m, angIdx),
			})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].start < cands[j].start })
	return cands
}

// group extracts a named submatch from index pairs, "" when absent.
func group(s string, m []int, idx int) string {
	if idx < 0 || 2*idx+1 >= len(m) || m[2*idx] < 0 {
		return ""
	}
	return strings.TrimSpace(s[m[2*idx]:m[2*idx+1]])
}

func parseAngle(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// applySign resolves the final sign of an angle. Explicit sign tokens win,
// then the governing verb's semantics, then the positive default.
func applySign(angle float64, sign, verb string) float64 {
	mag := angle
	if mag < 0 {
		mag = -mag
	}
	switch sign {
	case "-", "menos", "negativo":
		return -mag
	case "+", "mas", "positivo":
		return mag
	}
	if negativeVerbs[verb] {
		return -mag
	}
	return mag
}

func modeToken(word string) Token {
	if strings.HasPrefix(word, "absol") {
		return Token{Kind: KindMode, Mode: ModeAbsolute}
	}
	return Token{Kind: KindMode, Mode: ModeRelative}
}
