package intent

import "strings"

// asciiFold maps the accented characters that show up in Spanish STT output
// to their plain ASCII forms. Degree-symbol variants become the word
// "grados" so a single grammar covers "15°", "15º" and "15 grados".
var asciiFold = strings.NewReplacer(
	"á", "a", "à", "a", "ä", "a", "â", "a",
	"é", "e", "è", "e", "ë", "e", "ê", "e",
	"í", "i", "ì", "i", "ï", "i", "î", "i",
	"ó", "o", "ò", "o", "ö", "o", "ô", "o",
	"ú", "u", "ù", "u", "ü", "u", "û", "u",
	"ñ", "n", "ç", "c",
	"º", " grados", "°", " grados",
	",", " ", ";", " ",
)

// Normalize lowers, folds diacritics and strips punctuation so that the
// grammars only ever see plain ASCII words and digits.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = asciiFold.Replace(s)
	return strings.TrimSpace(s)
}

// Spanish ordinals and cardinals accepted as joint numbers. STT frequently
// renders "junta 2" as "junta segunda" or "junta dos".
var ordinals = map[string]int{
	"primer": 1, "primero": 1, "primera": 1,
	"segundo": 2, "segunda": 2,
	"tercero": 3, "tercera": 3,
	"cuarto": 4, "cuarta": 4,
	"quinto": 5, "quinta": 5,
	"sexto": 6, "sexta": 6,
	"septimo": 7, "septima": 7,
	"octavo": 8, "octava": 8,
	"noveno": 9, "novena": 9,
	"decimo": 10, "decima": 10,
}

var cardinals = map[string]int{
	"un": 1, "uno": 1, "una": 1,
	"dos": 2, "tres": 3, "cuatro": 4, "cinco": 5,
	"seis": 6, "siete": 7, "ocho": 8, "nueve": 9, "diez": 10,
}

// wordToInt resolves a joint word: digits first, then ordinals, then
// cardinals. Returns 0 if the word is not a number.
func wordToInt(token string) int {
	if token == "" {
		return 0
	}
	digits := true
	n := 0
	for _, r := range token {
		if r < '0' || r > '9' {
			digits = false
			break
		}
		n = n*10 + int(r-'0')
	}
	if digits {
		return n
	}
	if v, ok := ordinals[token]; ok {
		return v
	}
	return cardinals[token]
}
