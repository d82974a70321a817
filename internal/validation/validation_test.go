package validation

import "testing"

func TestRequired(t *testing.T) {
	v := make(Violations)
	Required("nom", "  ", v)
	Required("email", "a@b.fr", v)
	if v["nom"] != "required" {
		t.Fatalf("nom: %v", v)
	}
	if _, ok := v["email"]; ok {
		t.Fatalf("email ne devrait pas être en violation: %v", v)
	}
}

func TestNumericValidators(t *testing.T) {
	v := make(Violations)
	NonNegativeFloat("prix", -0.01, v)
	NonNegativeFloat("prix_ok", 0, v)
	PositiveInt("quantite", 0, v)
	PositiveInt("quantite_ok", 1, v)
	RequiredRef("client_id", 0, v)
	RequiredRef("client_ok", 7, v)

	if v["prix"] != "must_not_be_negative" || v["quantite"] != "must_be_positive" || v["client_id"] != "required" {
		t.Fatalf("violations inattendues: %v", v)
	}
	for _, field := range []string{"prix_ok", "quantite_ok", "client_ok"} {
		if _, ok := v[field]; ok {
			t.Fatalf("%s ne devrait pas être en violation", field)
		}
	}
}

func TestOneOf(t *testing.T) {
	v := make(Violations)
	OneOf("type", "CARROSSERIE", []string{"CARROSSERIE", "MECANIQUE"}, v)
	OneOf("type_ko", "PEINTURE", []string{"CARROSSERIE", "MECANIQUE"}, v)
	if v["type_ko"] != "invalid_value" {
		t.Fatalf("type_ko: %v", v)
	}
	if _, ok := v["type"]; ok {
		t.Fatalf("type ne devrait pas être en violation")
	}
}
