package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFaceTypeClassification(t *testing.T) {
	tests := []struct {
		typeLine string
		land     bool
		creature bool
	}{
		{"Basic Land — Mountain", true, false},
		{"Land", true, false},
		{"Creature — Goblin", false, true},
		{"Artifact Creature — Golem", false, true},
		{"Legendary Enchantment Creature — God", false, true},
		{"Instant", false, false},
		{"Enchantment — Aura", false, false},
		// substring must not match inside a word
		{"Creature — Landwalker", false, true},
		{"Wasteland Scorpion", false, false},
	}
	for _, tc := range tests {
		face := Face{TypeLine: tc.typeLine}
		assert.Equal(t, tc.land, face.IsLand(), tc.typeLine)
		assert.Equal(t, tc.creature, face.IsCreature(), tc.typeLine)
	}
}

func TestCardUsesFrontFace(t *testing.T) {
	c := &Card{
		Name:   "Delver of Secrets",
		Layout: "transform",
		Faces: []Face{
			{Name: "Delver of Secrets", TypeLine: "Creature — Human Wizard"},
			{Name: "Insectile Aberration", TypeLine: "Creature — Human Insect"},
		},
	}
	assert.True(t, c.IsCreature())
	assert.False(t, c.IsLand())
	assert.Equal(t, "Delver of Secrets", c.FrontFace().Name)

	empty := &Card{Name: "Unknown"}
	assert.Equal(t, Face{}, empty.FrontFace())
	assert.False(t, empty.IsCreature())
}

func TestNewInstanceStartsInLibrary(t *testing.T) {
	c := &Card{Name: "Mountain", Faces: []Face{{TypeLine: "Basic Land — Mountain"}}}
	inst := NewInstance(c, "owner-1")

	assert.NotEmpty(t, inst.ID)
	assert.Equal(t, ZoneLibrary, inst.Zone)
	assert.Equal(t, "owner-1", inst.OwnerID)
	assert.Equal(t, "Mountain", inst.Name())
	assert.False(t, inst.Tapped)
	assert.Zero(t, inst.Counters.Total())

	other := NewInstance(c, "owner-1")
	assert.NotEqual(t, inst.ID, other.ID)
}
