package scryfall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetchCardSingleFace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `!"Raging Goblin"`, r.URL.Query().Get("q"))
		w.Write([]byte(`{"data":[{
			"name":"Raging Goblin","layout":"normal","cmc":1,
			"colors":["R"],"color_identity":["R"],
			"mana_cost":"{R}","type_line":"Creature — Goblin Berserker",
			"oracle_text":"Haste","power":"1","toughness":"1"
		}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	c, err := client.FetchCard(context.Background(), "Raging Goblin")
	require.NoError(t, err)

	assert.Equal(t, "Raging Goblin", c.Name)
	require.Len(t, c.Faces, 1)
	assert.Equal(t, "{R}", c.Faces[0].ManaCost)
	assert.Equal(t, "1", c.Faces[0].Power)
	assert.True(t, c.IsCreature())
}

func TestFetchCardMultiFace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{
			"name":"Delver of Secrets // Insectile Aberration","layout":"transform","cmc":1,
			"color_identity":["U"],
			"card_faces":[
				{"name":"Delver of Secrets","mana_cost":"{U}","type_line":"Creature — Human Wizard","power":"1","toughness":"1"},
				{"name":"Insectile Aberration","type_line":"Creature — Human Insect","power":"3","toughness":"2"}
			]
		}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	c, err := client.FetchCard(context.Background(), "Delver of Secrets")
	require.NoError(t, err)
	require.Len(t, c.Faces, 2)
	assert.Equal(t, "Insectile Aberration", c.Faces[1].Name)
}

func TestFetchCardNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	_, err := client.FetchCard(context.Background(), "No Such Card")
	assert.Error(t, err)
}

func TestFetchCardEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	_, err := client.FetchCard(context.Background(), "No Such Card")
	assert.Error(t, err)
}
