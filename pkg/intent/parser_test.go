package intent

import "testing"

func singleMove(t *testing.T, tokens []Token, kind Kind) Token {
	t.Helper()
	var moves []Token
	for _, tok := range tokens {
		if tok.Kind == kind {
			moves = append(moves, tok)
		}
	}
	if len(moves) != 1 {
		t.Fatalf("expected 1 move token, got %d (%v)", len(moves), tokens)
	}
	return moves[0]
}

func TestParseRelativeBasic(t *testing.T) {
	tokens := Parse("mueve la junta 3 a 15 grados", ModeRelative)
	tok := singleMove(t, tokens, KindRelativeMove)
	if tok.Joint != 3 || tok.Degrees != 15 {
		t.Errorf("got joint %d, degrees %.1f, want 3, +15", tok.Joint, tok.Degrees)
	}
}

func TestParseNegativeVerb(t *testing.T) {
	tokens := Parse("baja la junta 2 20 grados", ModeRelative)
	tok := singleMove(t, tokens, KindRelativeMove)
	if tok.Joint != 2 || tok.Degrees != -20 {
		t.Errorf("got joint %d, degrees %.1f, want 2, -20", tok.Joint, tok.Degrees)
	}
}

func TestParseExplicitSignBeatsVerb(t *testing.T) {
	// "baja" implies negative but the spoken sign wins
	tokens := Parse("baja la junta 2 mas 20 grados", ModeRelative)
	tok := singleMove(t, tokens, KindRelativeMove)
	if tok.Degrees != 20 {
		t.Errorf("explicit positive sign should win over verb, got %.1f", tok.Degrees)
	}

	tokens = Parse("mueve la junta 4 menos 10 grados", ModeRelative)
	tok = singleMove(t, tokens, KindRelativeMove)
	if tok.Degrees != -10 {
		t.Errorf("explicit negative sign, got %.1f", tok.Degrees)
	}
}

func TestParseAbsoluteMode(t *testing.T) {
	tokens := Parse("junta 4 a posicion 30", ModeAbsolute)
	tok := singleMove(t, tokens, KindAbsoluteMove)
	if tok.Joint != 4 || tok.Degrees != 30 {
		t.Errorf("got joint %d, degrees %.1f, want 4, 30", tok.Joint, tok.Degrees)
	}
}

func TestParseAbsoluteNegativeTarget(t *testing.T) {
	tokens := Parse("pon la junta 2 en menos 90 grados", ModeAbsolute)
	tok := singleMove(t, tokens, KindAbsoluteMove)
	if tok.Joint != 2 || tok.Degrees != -90 {
		t.Errorf("got joint %d, degrees %.1f, want 2, -90", tok.Joint, tok.Degrees)
	}
}

func TestParseOrdinalJoint(t *testing.T) {
	tokens := Parse("gira la tercera articulacion 25 grados", ModeRelative)
	tok := singleMove(t, tokens, KindRelativeMove)
	if tok.Joint != 3 || tok.Degrees != 25 {
		t.Errorf("got joint %d, degrees %.1f, want 3, +25", tok.Joint, tok.Degrees)
	}
}

func TestParseCardinalJoint(t *testing.T) {
	tokens := Parse("mueve la junta cinco 12 grados", ModeRelative)
	tok := singleMove(t, tokens, KindRelativeMove)
	if tok.Joint != 5 {
		t.Errorf("got joint %d, want 5", tok.Joint)
	}
}

func TestParseAccentsFolded(t *testing.T) {
	tokens := Parse("mueve la articulación dos a 10º", ModeRelative)
	tok := singleMove(t, tokens, KindRelativeMove)
	if tok.Joint != 2 || tok.Degrees != 10 {
		t.Errorf("got joint %d, degrees %.1f, want 2, +10", tok.Joint, tok.Degrees)
	}
}

func TestParseOutOfRangeJointDropped(t *testing.T) {
	tokens := Parse("mueve la junta 9 a 15 grados", ModeRelative)
	for _, tok := range tokens {
		if tok.Kind == KindRelativeMove {
			t.Errorf("joint 9 should be dropped, got %v", tok)
		}
	}
}

func TestParseMultipleMovesInOrder(t *testing.T) {
	tokens := Parse("mueve la junta 1 10 grados y la junta 2 menos 5 grados", ModeRelative)
	var moves []Token
	for _, tok := range tokens {
		if tok.Kind == KindRelativeMove {
			moves = append(moves, tok)
		}
	}
	if len(moves) < 2 {
		t.Fatalf("expected at least 2 moves, got %d", len(moves))
	}
	if moves[0].Joint != 1 || moves[0].Degrees != 10 {
		t.Errorf("first move: got joint %d, degrees %.1f", moves[0].Joint, moves[0].Degrees)
	}
	if moves[1].Joint != 2 || moves[1].Degrees != -5 {
		t.Errorf("second move: got joint %d, degrees %.1f", moves[1].Joint, moves[1].Degrees)
	}
}

func TestParseDecimalAngle(t *testing.T) {
	tokens := Parse("mueve la junta 1 a 12.5 grados", ModeRelative)
	tok := singleMove(t, tokens, KindRelativeMove)
	if tok.Degrees != 12.5 {
		t.Errorf("got %.2f, want 12.5", tok.Degrees)
	}
}

func TestParseModeSwitch(t *testing.T) {
	tokens := Parse("cambia a modo absoluto", ModeRelative)
	found := false
	for _, tok := range tokens {
		if tok.Kind == KindMode && tok.Mode == ModeAbsolute {
			found = true
		}
	}
	if !found {
		t.Errorf("expected mode token, got %v", tokens)
	}

	tokens = Parse("modo relativo", ModeAbsolute)
	found = false
	for _, tok := range tokens {
		if tok.Kind == KindMode && tok.Mode == ModeRelative {
			found = true
		}
	}
	if !found {
		t.Errorf("expected relative mode token, got %v", tokens)
	}
}

func TestParseGlobalIntents(t *testing.T) {
	cases := []struct {
		text string
		kind Kind
	}{
		{"ve a home", KindHome},
		{"volver a la posicion inicial", KindHome},
		{"confirmo", KindConfirm},
		{"adelante", KindConfirm},
		{"cancela eso", KindCancel},
		{"mejor no", KindCancel},
	}
	for _, c := range cases {
		tokens := Parse(c.text, ModeRelative)
		found := false
		for _, tok := range tokens {
			if tok.Kind == c.kind {
				found = true
			}
		}
		if !found {
			t.Errorf("%q: expected kind %v, got %v", c.text, c.kind, tokens)
		}
	}
}

func TestParseConfirmationToggle(t *testing.T) {
	tokens := Parse("desactivar confirmacion", ModeRelative)
	found := false
	for _, tok := range tokens {
		if tok.Kind == KindConfirmRequirement && !tok.Enabled {
			found = true
		}
	}
	if !found {
		t.Errorf("expected confirmation-off token, got %v", tokens)
	}

	tokens = Parse("activar confirmación", ModeRelative)
	found = false
	for _, tok := range tokens {
		if tok.Kind == KindConfirmRequirement && tok.Enabled {
			found = true
		}
	}
	if !found {
		t.Errorf("expected confirmation-on token, got %v", tokens)
	}
}

func TestParseEmptyAndNoise(t *testing.T) {
	if tokens := Parse("", ModeRelative); tokens != nil {
		t.Errorf("empty input: got %v", tokens)
	}
	if tokens := Parse("hola que tal", ModeRelative); len(tokens) != 0 {
		t.Errorf("noise input: got %v", tokens)
	}
}

func TestParseJShorthand(t *testing.T) {
	tokens := Parse("j3 45", ModeAbsolute)
	tok := singleMove(t, tokens, KindAbsoluteMove)
	if tok.Joint != 3 || tok.Degrees != 45 {
		t.Errorf("got joint %d, degrees %.1f, want 3, 45", tok.Joint, tok.Degrees)
	}
}
