package gameid

import "testing"

func TestGenerate_ProducesValidID(t *testing.T) {
	id := Generate()

	if err := Validate(id); err != nil {
		t.Errorf("Generate() produced an invalid ID: %v", err)
	}
}

func TestGenerate_IsUnique(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		id := Generate()
		if seen[id] {
			t.Fatalf("Generate() returned a duplicate ID: %s", id)
		}
		seen[id] = true
	}
}

func TestGenerate_SortsChronologically(t *testing.T) {
	ids := make([]string, 10)
	for i := range ids {
		ids[i] = Generate()
	}

	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Errorf("ID %d (%s) does not sort before ID %d (%s)", i-1, ids[i-1], i, ids[i])
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "generated ID", id: Generate(), wantErr: false},
		{name: "empty string", id: "", wantErr: true},
		{name: "too short", id: "not-a-uuid", wantErr: true},
		{name: "wrong version", id: "00000000-0000-4000-8000-000000000000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}
